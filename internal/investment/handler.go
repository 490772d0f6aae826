package investment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/pkg/middleware"
	"github.com/sahminvest/marketplace/pkg/response"
)

// Handler handles HTTP requests for investment operations
type Handler struct {
	service *Service
}

// NewHandler creates a new investment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for investor investment endpoints,
// mounted under /investor/deals
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{id}/invest", h.Invest)

	return r
}

// Invest handles POST /investor/deals/{id}/invest
// @Summary      Invest in a deal
// @Description  Commits capital from the investor's wallet into a deal
// @Tags         investments
// @Accept       json
// @Produce      json
// @Param        id path int true "Deal ID"
// @Param        request body InvestRequest true "Investment request"
// @Success      201 {object} response.APIResponse{data=InvestmentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /investor/deals/{id}/invest [post]
func (h *Handler) Invest(w http.ResponseWriter, r *http.Request) {
	investorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	dealID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid deal ID")
		return
	}

	var req InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Invest(r.Context(), investorID, dealID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, deal.ErrDealNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrDealNotOpen):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to create investment")
		}
		return
	}

	response.JSON(w, http.StatusCreated, result)
}
