package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/apierror"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/dto"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/middleware"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterStructValidation(closingPieces, dto.StockLevels{})
}

// closingPieces rejects fractional counts of piece-counted products.
func closingPieces(sl validator.StructLevel) {
	l := sl.Current().Interface().(dto.StockLevels)
	for name, v := range map[string]decimal.Decimal{"Panini": l.Panini, "Sweets": l.Sweets, "Packages": l.Packages} {
		if !v.IsInteger() {
			sl.ReportError(v, name, name, "piece_qty", "")
		}
	}
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// checkKindFields enforces the fields a transaction kind needs beyond the
// shared tags, in the same field-map shape as tag failures.
func checkKindFields(kind ledger.Kind, req dto.TransactionRequest) map[string]string {
	rule, _ := ledger.RuleFor(kind)
	fields := map[string]string{}
	if rule.Money != ledger.None {
		if req.TypeCost == "" {
			fields["TypeCost"] = "required"
		}
		if req.Money <= 0 {
			fields["Money"] = "gt"
		}
	}
	if rule.Stock != ledger.None {
		if req.Product == "" {
			fields["Product"] = "required"
		}
		if !req.Amount.IsPositive() {
			fields["Amount"] = "gt"
		} else if ledger.Product(req.Product).Counted() && !req.Amount.IsInteger() {
			fields["Amount"] = "piece_qty"
		}
	}
	if rule.Counterpart && req.DestinationShopID == 0 {
		fields["DestinationShopID"] = "required"
	}
	return fields
}

// respondError maps a service error onto the HTTP status and envelope.
// Unclassified errors are attached to the context for ErrorHandler to log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrReportAlreadySubmitted), errors.Is(err, service.ErrConcurrency):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// requireShop aborts with 403 unless the actor may work on shopID.
func requireShop(c *gin.Context, shopID uint) bool {
	if !middleware.GetClaims(c).CanAccessShop(shopID) {
		c.JSON(http.StatusForbidden, apierror.New("no access to this shop"))
		return false
	}
	return true
}

func actorID(c *gin.Context) uint {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.BaristaID
	}
	return 0
}
