// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Waqar080206/usar-ranklist/internal/domain/query"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
	"github.com/Waqar080206/usar-ranklist/internal/domain/types"
)

// RanklistDependencies defines the interface for ranklist queries.
type RanklistDependencies interface {
	Ranklist(ctx context.Context, f query.Filter, metric rank.Metric, order rank.Order) (types.Ranklist, error)
}

// RanklistHandler handles ranklist requests.
type RanklistHandler struct {
	deps     RanklistDependencies
	maxLimit int
}

// NewRanklistHandler creates a new ranklist handler. maxLimit caps how many
// rows one response may carry; zero or negative disables the cap.
func NewRanklistHandler(deps RanklistDependencies, maxLimit int) *RanklistHandler {
	return &RanklistHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRanklist handles requests like
// GET /api/ranklist?branch=AIDS&semester=03&batch=2024&sort_by=sgpa&order=desc.
//
// sort_by defaults to sgpa, order to desc, matching the published UI.
func (h *RanklistHandler) HandleGetRanklist(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranklist"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	sortBy := q.Get("sort_by")
	if sortBy == "" {
		sortBy = string(rank.MetricSGPA)
	}
	metric, err := rank.ParseMetric(sortBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	orderStr := strings.ToLower(q.Get("order"))
	if orderStr == "" {
		orderStr = string(rank.OrderDesc)
	}
	order, err := rank.ParseOrder(orderStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	f := query.Filter{
		Branch:   strings.ToUpper(q.Get("branch")),
		Semester: q.Get("semester"),
		Batch:    q.Get("batch"),
	}

	ranklist, err := h.deps.Ranklist(r.Context(), f, metric, order)
	if err != nil {
		if errors.Is(err, rank.ErrMissingMetric) || query.IsInvalidInput(err) {
			writeError(w, http.StatusUnprocessableEntity, "unprocessable", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	if h.maxLimit > 0 && len(ranklist.Entries) > h.maxLimit {
		ranklist.Entries = ranklist.Entries[:h.maxLimit]
	}
	writeJSON(w, http.StatusOK, ranklist)
}
