// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/Waqar080206/usar-ranklist/internal/app"
	"github.com/Waqar080206/usar-ranklist/internal/adapters/repository"
)

// StudentDependencies defines the interface for student detail lookups.
type StudentDependencies interface {
	Student(ctx context.Context, rollNo string) (service.StudentDetail, error)
}

// StudentHandler handles student detail requests.
type StudentHandler struct {
	deps StudentDependencies
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(deps StudentDependencies) *StudentHandler {
	return &StudentHandler{deps: deps}
}

// HandleGetStudent handles GET /api/student/{roll_no} requests.
func (h *StudentHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_student"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rollNo := strings.TrimPrefix(r.URL.Path, "/api/student/")
	if rollNo == "" || strings.Contains(rollNo, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	detail, err := h.deps.Student(r.Context(), rollNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
