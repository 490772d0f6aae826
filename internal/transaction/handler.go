package transaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sahminvest/marketplace/pkg/middleware"
	"github.com/sahminvest/marketplace/pkg/response"
)

// Handler handles HTTP requests for ledger queries
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for investor ledger endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// List handles GET /investor/transactions
// @Summary      List ledger entries
// @Description  Returns the authenticated investor's transactions, newest first
// @Tags         transactions
// @Produce      json
// @Param        type query string false "Filter by type (DEPOSIT, WITHDRAWAL, INVESTMENT, RETURN, PROFIT_DISTRIBUTION)"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]Transaction}
// @Router       /investor/transactions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	investorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	txType := r.URL.Query().Get("type")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	transactions, total, err := h.service.ListByInvestor(r.Context(), investorID, txType, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list transactions")
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, transactions, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
