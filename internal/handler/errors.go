package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
	"github.com/xenking/optic-storefront/internal/domain/auth"
	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/order"
	"github.com/xenking/optic-storefront/internal/domain/promo"
	"github.com/xenking/optic-storefront/pkg/httpmiddleware"
)

// errorStatus maps domain errors to a status code and client message.
func errorStatus(err error) (int, string) {
	var (
		reqErr   *requestError
		orderVal *order.ValidationError
		apptVal  *appointment.ValidationError
		promoErr *order.PromoError
		catVal   *catalog.ValidationError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.msg
	case errors.As(err, &orderVal):
		return http.StatusBadRequest, orderVal.Message
	case errors.As(err, &apptVal):
		return http.StatusBadRequest, apptVal.Message
	case errors.As(err, &catVal):
		return http.StatusBadRequest, catVal.Message
	case errors.As(err, &promoErr):
		return http.StatusUnprocessableEntity, promoErr.Message
	case errors.Is(err, order.ErrEmptyItems):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, appointment.ErrInvalidStatus):
		return http.StatusBadRequest, "Invalid status"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, catalog.ErrCategoryNotFound):
		return http.StatusNotFound, "Category not found"
	case errors.Is(err, catalog.ErrDuplicate):
		return http.StatusConflict, "Product already exists"
	case errors.Is(err, catalog.ErrCategoryDuplicate):
		return http.StatusConflict, "Category already exists"
	case errors.Is(err, catalog.ErrCategoryInUse):
		return http.StatusConflict, "Category still has products"
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, appointment.ErrNotFound):
		return http.StatusNotFound, "Appointment not found"
	case errors.Is(err, promo.ErrNotFound):
		return http.StatusNotFound, "Promo code not found"
	case errors.Is(err, promo.ErrDuplicate):
		return http.StatusConflict, "Promo code already exists"
	case errors.Is(err, appointment.ErrNotCancellable):
		return http.StatusConflict, "Appointment can no longer be cancelled"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	}
	return http.StatusInternalServerError, "internal server error"
}

// fail writes the error envelope for err. Server errors are logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}
	httpmiddleware.WriteError(w, status, msg)
}
