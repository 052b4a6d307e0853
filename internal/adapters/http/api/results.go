// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/Waqar080206/usar-ranklist/internal/app"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
)

// ResultsDependencies defines the interface for batch ingestion.
type ResultsDependencies interface {
	SubmitRecords(ctx context.Context, records []model.StudentRecord) (service.SubmitOutcome, error)
}

// ResultsHandler handles result-document submissions.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// recordRequest mirrors the parsed-results JSON produced by the extractor.
type recordRequest struct {
	RollNo         string               `json:"roll_no"`
	Name           string               `json:"name"`
	SID            string               `json:"sid"`
	Programme      string               `json:"programme"`
	Semester       string               `json:"semester"`
	Batch          string               `json:"batch"`
	MaxMarks       float64              `json:"max_marks"`
	CreditsSecured float64              `json:"credits_secured"`
	Subjects       []model.SubjectScore `json:"subjects"`
	SGPA           *float64             `json:"sgpa"`
}

func (r recordRequest) validate() error {
	switch {
	case strings.TrimSpace(r.RollNo) == "":
		return errors.New("missing roll_no")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("missing name")
	case len(r.Subjects) == 0 && r.SGPA == nil:
		return errors.New("record carries neither subjects nor sgpa")
	}
	return nil
}

func (r recordRequest) toModel() model.StudentRecord {
	rec := model.StudentRecord{
		RollNo:         strings.TrimSpace(r.RollNo),
		Name:           strings.TrimSpace(r.Name),
		SID:            r.SID,
		Programme:      r.Programme,
		Semester:       r.Semester,
		Batch:          r.Batch,
		MaxMarks:       r.MaxMarks,
		CreditsSecured: r.CreditsSecured,
		Subjects:       r.Subjects,
	}
	if r.SGPA != nil {
		rec.SGPA = *r.SGPA
		rec.HasSGPA = true
	}
	return rec
}

// HandlePostResults handles POST /api/results requests.
func (h *ResultsHandler) HandlePostResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_results"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var reqs []recordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	records := make([]model.StudentRecord, 0, len(reqs))
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		records = append(records, req.toModel())
	}

	outcome, err := h.deps.SubmitRecords(r.Context(), records)
	if err != nil {
		if errors.Is(err, service.ErrBackpressure) {
			writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, outcome)
}
