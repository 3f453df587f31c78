package http

import (
	"encoding/json"
	"net/http"

	"github.com/campushq/attendance-backend-go/internal/domain/session"
	"github.com/campushq/attendance-backend-go/internal/handler/http/response"
	"github.com/campushq/attendance-backend-go/internal/pkg/jwt"
	"github.com/campushq/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type SessionHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListActive(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
}

type sessionHandlerImpl struct {
	sessionService session.Service
}

func NewSessionHandler(sessionService session.Service) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
	}
}

// Start implements SessionHandler.
func (h *sessionHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req session.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.sessionService.Start(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance session started", result)
}

// Get implements SessionHandler.
func (h *sessionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// End implements SessionHandler.
func (h *sessionHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.End(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance session ended", result)
}

// Cancel implements SessionHandler.
func (h *sessionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance session cancelled", result)
}

// Update implements SessionHandler.
func (h *sessionHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req session.UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.sessionService.Update(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance session updated", result)
}

// List implements SessionHandler.
func (h *sessionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := session.SessionFilter{
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", 20),
	}
	if ca := r.URL.Query().Get("course_assignment_id"); ca != "" {
		filter.CourseAssignmentID = &ca
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !validator.IsInSlice(status, []string{"active", "ended", "cancelled"}) {
			response.BadRequest(w, "Invalid status filter", nil)
			return
		}
		filter.Status = &status
	}

	result, err := h.sessionService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Sessions, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
	})
}

// ListActive implements SessionHandler.
func (h *sessionHandlerImpl) ListActive(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.ListActive(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Recent implements SessionHandler.
func (h *sessionHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	lecturerID := chi.URLParam(r, "lecturerID")
	limit := parseIntQuery(r, "limit", 10)

	result, err := h.sessionService.Recent(r.Context(), actor, lecturerID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Statistics implements SessionHandler.
func (h *sessionHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, err := jwt.IdentityFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.sessionService.Statistics(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
