package variant

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/revendelo/backend-tienda/internal/common"
)

// Handler exposes the product options endpoint.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Options handles GET /api/v1/products/{code}/options. Attribute selections
// arrive as query parameters keyed by position label, e.g. ?color=RED&size=M.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "variant service not configured", nil)
		return
	}
	code := chi.URLParam(r, "code")
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "product code is required", nil)
		return
	}

	selections := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			selections[key] = values[0]
		}
	}

	view, err := h.service.Options(r.Context(), code, selections)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
			return
		}
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstream, "catalog lookup failed", nil)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}
