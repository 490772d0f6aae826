package distribution

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/distribution/allocate"
	"github.com/sahminvest/marketplace/pkg/middleware"
	"github.com/sahminvest/marketplace/pkg/response"
)

// Handler handles HTTP requests for the distribution workflow
type Handler struct {
	service *Service
}

// NewHandler creates a new distribution handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PartnerRoutes returns the router for partner distribution endpoints
func (h *Handler) PartnerRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/profit-distribution", h.Submit)

	return r
}

// AdminRoutes returns the router for admin review endpoints
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)

	return r
}

// Submit handles POST /partner/profit-distribution
// @Summary      Submit a distribution request
// @Description  Proposes a PARTIAL or FINAL profit distribution for a deal
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        request body SubmitRequest true "Distribution proposal"
// @Success      201 {object} response.APIResponse{data=SubmitResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /partner/profit-distribution [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), partnerID, &req)
	if err != nil {
		var overrun *CapitalOverrunError
		switch {
		case errors.As(err, &overrun):
			response.ErrorWithDetails(w, http.StatusBadRequest, "CAPITAL_EXCEEDED", err.Error(), map[string]interface{}{
				"remainingCapital": overrun.RemainingCapital,
				"maxTotalAmount":   overrun.MaxTotalAmount,
			})
		case errors.Is(err, deal.ErrDealNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotDealOwner):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidPercent),
			errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNoInvestments):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to submit distribution request")
		}
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

// List handles GET /admin/profit-distribution-requests
// @Summary      List distribution requests
// @Tags         distributions
// @Produce      json
// @Param        status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED)
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]Request}
// @Router       /admin/profit-distribution-requests [get]
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

	requests, total, err := h.service.ListRequests(r.Context(), status, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list distribution requests")
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, requests, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get handles GET /admin/profit-distribution-requests/{id}
// @Summary      Get a distribution request
// @Description  Returns the request and, when approved, its per-investor records
// @Tags         distributions
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200 {object} response.APIResponse{data=RequestResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /admin/profit-distribution-requests/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	result, err := h.service.GetRequest(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get distribution request")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Approve handles POST /admin/profit-distribution-requests/{id}/approve
// @Summary      Approve a distribution request
// @Description  Runs the distribution engine and credits investor wallets atomically
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        request body ApproveRequest false "Admin edits"
// @Success      200 {object} response.APIResponse{data=ApproveResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/profit-distribution-requests/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	// Body is optional: an empty body approves the request as submitted.
	var edits *ApproveRequest
	if r.ContentLength > 0 {
		edits = &ApproveRequest{}
		if err := json.NewDecoder(r.Body).Decode(edits); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	result, err := h.service.Approve(r.Context(), adminID, id, edits)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrAlreadyProcessed):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrNoInvestments),
			errors.Is(err, allocate.ErrNonPositiveTotal),
			errors.Is(err, allocate.ErrPercentOutOfRange),
			errors.Is(err, allocate.ErrDeductionsExceedTotal),
			errors.Is(err, allocate.ErrCommissionExceedsGain),
			errors.Is(err, allocate.ErrNegativeReturnCapital):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to approve distribution request")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Reject handles POST /admin/profit-distribution-requests/{id}/reject
// @Summary      Reject a distribution request
// @Tags         distributions
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200 {object} response.APIResponse{data=Request}
// @Failure      404 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /admin/profit-distribution-requests/{id}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	result, err := h.service.Reject(r.Context(), adminID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrAlreadyProcessed):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to reject distribution request")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
