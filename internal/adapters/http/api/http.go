// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/Waqar080206/usar-ranklist/internal/app"
	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/internal/domain/query"
	"github.com/Waqar080206/usar-ranklist/internal/domain/rank"
	"github.com/Waqar080206/usar-ranklist/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitRecords queues a batch of raw records for ingestion.
	SubmitRecords(ctx context.Context, records []model.StudentRecord) (service.SubmitOutcome, error)

	// Read operations expose the ranked dataset.
	Ranklist(ctx context.Context, f query.Filter, metric rank.Metric, order rank.Order) (types.Ranklist, error)
	Student(ctx context.Context, rollNo string) (service.StudentDetail, error)
	Filters(ctx context.Context) (service.FilterOptions, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	resultsHandler  *ResultsHandler
	ranklistHandler *RanklistHandler
	studentHandler  *StudentHandler
	filtersHandler  *FiltersHandler
	tableHandler    *tableHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		resultsHandler:  NewResultsHandler(deps),
		ranklistHandler: NewRanklistHandler(deps, maxLimit),
		studentHandler:  NewStudentHandler(deps),
		filtersHandler:  NewFiltersHandler(deps),
		tableHandler:    newTableHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/dashboard", s.tableHandler.HandleTable)
	mux.HandleFunc("/api/results", MetricsMiddleware(s.resultsHandler.HandlePostResults, "results"))
	mux.HandleFunc("/api/ranklist", MetricsMiddleware(s.ranklistHandler.HandleGetRanklist, "ranklist"))
	mux.HandleFunc("/api/student/", MetricsMiddleware(s.studentHandler.HandleGetStudent, "student"))
	mux.HandleFunc("/api/filters", MetricsMiddleware(s.filtersHandler.HandleGetFilters, "filters"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
