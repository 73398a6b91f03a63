package handler

import (
	"net/http"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ShopsHandler struct{ svc service.ShopService }

func NewShopsHandler(svc service.ShopService) *ShopsHandler { return &ShopsHandler{svc: svc} }

// Create godoc
// @Summary      Create a shop
// @Description  Creates the shop together with its storage and equipment records.
// @Tags         shops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateShopRequest true "Shop"
// @Success      201  {object} dto.ShopResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/shops [post]
func (h *ShopsHandler) Create(c *gin.Context) {
	var req dto.CreateShopRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get a shop with balances and stock
// @Tags         shops
// @Produce      json
// @Security     BearerAuth
// @Param        id  path int true "Shop ID"
// @Success      200 {object} dto.ShopResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/shops/{id} [get]
func (h *ShopsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok || !requireShop(c, id) {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List shops
// @Tags         shops
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ShopResponse
// @Router       /v1/shops [get]
func (h *ShopsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShopsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShopsHandler) AssignBarista(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignBaristaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AssignBarista(c.Request.Context(), id, req.BaristaID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
