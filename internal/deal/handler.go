package deal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sahminvest/marketplace/pkg/response"
)

// Handler handles HTTP requests for deal operations
type Handler struct {
	service *Service
}

// NewHandler creates a new deal handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for deal endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)

	return r
}

// List handles GET /deals
// @Summary      List deals
// @Tags         deals
// @Produce      json
// @Param        status query string false "Filter by status (ACTIVE, FUNDED, COMPLETED)"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]DealResponse}
// @Router       /deals [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	deals, total, err := h.service.List(r.Context(), status, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list deals")
		return
	}

	responses := make([]*DealResponse, len(deals))
	for i, d := range deals {
		responses[i] = d.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetByID handles GET /deals/{id}
// @Summary      Get deal by ID
// @Description  Returns the deal along with its funding stats
// @Tags         deals
// @Produce      json
// @Param        id path int true "Deal ID"
// @Success      200 {object} response.APIResponse{data=DealResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /deals/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid deal ID")
		return
	}

	resp, err := h.service.GetWithStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDealNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get deal")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
