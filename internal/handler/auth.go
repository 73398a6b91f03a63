package handler

import (
	"net/http"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Barista login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Baristas Handler ─────────────────────────────────────────────────────────

type BaristasHandler struct{ svc service.AuthService }

func NewBaristasHandler(svc service.AuthService) *BaristasHandler {
	return &BaristasHandler{svc: svc}
}

// Create godoc
// @Summary Create a barista account
// @Tags baristas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateBaristaRequest true "Barista"
// @Success 201 {object} dto.BaristaResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/baristas [post]
func (h *BaristasHandler) Create(c *gin.Context) {
	var req dto.CreateBaristaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateBarista(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List baristas
// @Tags baristas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.BaristaResponse
// @Router /v1/baristas [get]
func (h *BaristasHandler) List(c *gin.Context) {
	resp, err := h.svc.ListBaristas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BaristasHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *BaristasHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *BaristasHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), id, active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
