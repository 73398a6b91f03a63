package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/apierror"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Submit godoc
// @Summary      Submit the end-of-day report
// @Description  Reconciles declared cash and closing stock against the shop's live state.
// @Description  Only the configured number of reports per shop per local day is accepted.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ReportRequest true "Declared values"
// @Success      201  {object} dto.ReportResponse
// @Failure      409  {object} apierror.APIError "already submitted today or shop busy"
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/reports [post]
func (h *ReportsHandler) Submit(c *gin.Context) {
	var req dto.ReportRequest
	if !bindAndValidate(c, &req) || !requireShop(c, req.ShopID) {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Edit godoc
// @Summary      Edit a submitted report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                   true "Report ID"
// @Param        body body dto.ReportEditRequest true "New declared values"
// @Success      200  {object} dto.ReportResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/reports/{id} [put]
func (h *ReportsHandler) Edit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReportEditRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Edit(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) Delete(c *gin.Context) {
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

func (h *ReportsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
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
// @Summary      List a shop's reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        shop_id query int    true  "Shop ID"
// @Param        from    query string false "First local day YYYY-MM-DD"
// @Param        to      query string false "Last local day YYYY-MM-DD (inclusive)"
// @Success      200 {array} dto.ReportResponse
// @Router       /v1/reports [get]
func (h *ReportsHandler) List(c *gin.Context) {
	filter, ok := bindReportFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportExcel godoc
// @Summary      Download a shop's reports as a spreadsheet
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        shop_id query int    true  "Shop ID"
// @Param        from    query string false "First local day YYYY-MM-DD"
// @Param        to      query string false "Last local day YYYY-MM-DD (inclusive)"
// @Success      200 {file} binary
// @Router       /v1/reports/export [get]
func (h *ReportsHandler) ExportExcel(c *gin.Context) {
	filter, ok := bindReportFilter(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportExcel(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reports-shop-%d.xlsx"`, filter.ShopID))
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

// ExportPDF godoc
// @Summary      Download a single report sheet as PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Report ID"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/reports/{id}/pdf [get]
func (h *ReportsHandler) ExportPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rep, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !requireShop(c, rep.ShopID) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportPDF(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%d.pdf"`, id))
	c.Data(http.StatusOK, mimePDF, buf.Bytes())
}

func bindReportFilter(c *gin.Context) (dto.ReportFilter, bool) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return filter, false
	}
	if !validateStruct(c, &filter) || !requireShop(c, filter.ShopID) {
		return filter, false
	}
	return filter, true
}
