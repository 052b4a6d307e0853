// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// tableHandler serves the embedded browser table/detail view.
type tableHandler struct{}

func newTableHandler() *tableHandler {
	return &tableHandler{}
}

// HandleTable handles GET /dashboard requests with the ranklist table page.
func (h *tableHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, tableFS, "ranklist.html")
}
