package handler

import (
	"net/http"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/apierror"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// TransactionsHandler serves every transaction kind under /v1/transactions/:kind.
type TransactionsHandler struct{ svc service.TransactionService }

func NewTransactionsHandler(svc service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

func kindParam(c *gin.Context) (ledger.Kind, bool) {
	k, err := ledger.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return "", false
	}
	return k, true
}

// bindTransaction binds the body and runs both tag and per-kind checks.
func bindTransaction(c *gin.Context, kind ledger.Kind) (dto.TransactionRequest, bool) {
	var req dto.TransactionRequest
	if !bindAndValidate(c, &req) {
		return req, false
	}
	if fields := checkKindFields(kind, req); len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return req, false
	}
	return req, requireShop(c, req.ShopID)
}

// Create godoc
// @Summary      Record a transaction
// @Description  Applies the kind's effect on the shop balance and storage in one DB transaction.
// @Description  Backdated records are stored without touching live state.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind path string                 true "expense | supply | by_weight | write_off | deposit_fund | collection_fund | transfer_product"
// @Param        body body dto.TransactionRequest true "Transaction"
// @Success      201  {object} dto.TransactionResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/transactions/{kind} [post]
func (h *TransactionsHandler) Create(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	req, ok := bindTransaction(c, kind)
	if !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), kind, req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Edit godoc
// @Summary      Edit a transaction
// @Description  Reverses the stored effect and re-applies the edited values atomically.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind path string                 true "Transaction kind"
// @Param        id   path int                    true "Record ID"
// @Param        body body dto.TransactionRequest true "New values"
// @Success      200  {object} dto.TransactionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transactions/{kind}/{id} [put]
func (h *TransactionsHandler) Edit(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok || !h.ownsRecord(c, kind, id) {
		return
	}
	req, ok := bindTransaction(c, kind)
	if !ok {
		return
	}
	resp, err := h.svc.Edit(c.Request.Context(), kind, id, req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a transaction
// @Description  Reverses the record's effect (unless backdated) and removes it.
// @Tags         transactions
// @Security     BearerAuth
// @Param        kind path string true "Transaction kind"
// @Param        id   path int    true "Record ID"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/transactions/{kind}/{id} [delete]
func (h *TransactionsHandler) Delete(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok || !h.ownsRecord(c, kind, id) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), kind, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransactionsHandler) Get(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !requireShop(c, resp.ShopID) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List a shop's transactions of one kind
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path  string true  "Transaction kind"
// @Param        shop_id query int    true  "Shop ID"
// @Param        date    query string false "Local day YYYY-MM-DD"
// @Param        page    query int    false "Page (default 1)"
// @Param        limit   query int    false "Page size (default 50)"
// @Success      200 {object} dto.TransactionListResponse
// @Router       /v1/transactions/{kind} [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if !validateStruct(c, &filter) || !requireShop(c, filter.ShopID) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), kind, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ownsRecord checks shop access against the stored record, so a barista
// cannot move a record out of a shop they do not work at.
func (h *TransactionsHandler) ownsRecord(c *gin.Context, kind ledger.Kind, id uint) bool {
	rec, err := h.svc.Get(c.Request.Context(), kind, id)
	if err != nil {
		respondError(c, err)
		return false
	}
	return requireShop(c, rec.ShopID)
}
