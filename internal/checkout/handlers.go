package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/revendelo/backend-tienda/internal/common"
	"github.com/revendelo/backend-tienda/internal/shipping"
)

// Handler exposes the quote, order, and shipping endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

// Quote handles POST /api/v1/checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	var payload QuoteInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, err.Error(), nil)
		return
	}
	out, err := h.Svc.Quote(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, out)
}

// Submit handles POST /api/v1/checkout.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	var payload OrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, err.Error(), nil)
		return
	}
	out, err := h.Svc.Submit(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, out)
}

// GAM handles GET /api/v1/shipping/gam. With province and canton query
// parameters it answers the membership check; without them it returns the
// full metro-area reference data.
func (h *Handler) GAM(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	canton := r.URL.Query().Get("canton")
	if province == "" && canton == "" {
		common.JSONData(w, http.StatusOK, shipping.MetroCantons())
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"province": province,
		"canton":   canton,
		"inGam":    shipping.IsGAM(province, canton),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unknown error", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = common.CodeBadRequest
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	if errors.Is(err, ErrEmptyOrder) {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "order has no items", nil)
		return
	}
	common.JSONError(w, http.StatusBadGateway, common.CodeUpstream, err.Error(), nil)
}
