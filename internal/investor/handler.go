package investor

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sahminvest/marketplace/pkg/middleware"
	"github.com/sahminvest/marketplace/pkg/response"
)

// Handler handles HTTP requests for investor operations
type Handler struct {
	service *Service
}

// NewHandler creates a new investor handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for investor-facing endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/wallet", h.GetWallet)

	return r
}

// AdminRoutes returns the router for admin investor endpoints
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// GetWallet handles GET /investor/wallet
// @Summary      Get wallet summary
// @Description  Returns the authenticated investor's wallet balance and cumulative returns
// @Tags         investors
// @Produce      json
// @Success      200 {object} response.APIResponse{data=WalletResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /investor/wallet [get]
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	investorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), investorID)
	if err != nil {
		if errors.Is(err, ErrInvestorNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get wallet")
		return
	}

	response.JSON(w, http.StatusOK, wallet)
}

// GetByID handles GET /admin/investors/{id}
// @Summary      Get investor by ID
// @Tags         investors
// @Produce      json
// @Param        id path int true "Investor ID"
// @Success      200 {object} response.APIResponse{data=InvestorResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /admin/investors/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid investor ID")
		return
	}

	inv, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrInvestorNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get investor")
		return
	}

	response.JSON(w, http.StatusOK, inv.ToResponse())
}

// List handles GET /admin/investors
// @Summary      List investors
// @Tags         investors
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]InvestorResponse}
// @Router       /admin/investors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	investors, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list investors")
		return
	}

	responses := make([]*InvestorResponse, len(investors))
	for i, inv := range investors {
		responses[i] = inv.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
