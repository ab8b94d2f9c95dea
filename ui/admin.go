package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dataviz/domain/dataset"
	"dataviz/internal/errors"
	"dataviz/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Admin list_display columns.
var (
	uploadDisplay   = []string{"name", "uploaded_at", "processed"}
	snapshotDisplay = []string{"name", "created_at"}
)

type adminListing struct {
	Model       string                   `json:"model"`
	ListDisplay []string                 `json:"list_display"`
	Count       int                      `json:"count"`
	Results     []map[string]interface{} `json:"results"`
}

// adminRouter serves the read-only record listings under /admin.
func (s *Server) adminRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/uploads", s.handleAdminUploads)
		r.Get("/snapshots", s.handleAdminSnapshots)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAdminError(w, r, errors.NotFound("admin page"))
	})
	return r
}

func (s *Server) handleAdminUploads(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r.URL.Query().Get("q"), r.URL.Query().Get("limit"))
	if err != nil {
		writeAdminError(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("processed"); raw != "" {
		processed, err := strconv.ParseBool(raw)
		if err != nil {
			writeAdminError(w, r, errors.InvalidInput("processed must be true or false"))
			return
		}
		filter.Processed = &processed
	}

	uploads, err := s.workbench.ListUploads(r.Context(), filter)
	if err != nil {
		writeAdminError(w, r, err)
		return
	}

	rows := make([]map[string]interface{}, 0, len(uploads))
	for _, u := range uploads {
		rows = append(rows, uploadRow(u))
	}
	writeAdminJSON(w, r, adminListing{Model: "upload", ListDisplay: uploadDisplay, Count: len(rows), Results: rows})
}

func (s *Server) handleAdminSnapshots(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r.URL.Query().Get("q"), r.URL.Query().Get("limit"))
	if err != nil {
		writeAdminError(w, r, err)
		return
	}

	snaps, err := s.workbench.ListSnapshots(r.Context(), filter)
	if err != nil {
		writeAdminError(w, r, err)
		return
	}

	rows := make([]map[string]interface{}, 0, len(snaps))
	for _, snap := range snaps {
		rows = append(rows, map[string]interface{}{
			"id":         snap.ID.String(),
			"name":       snap.Name,
			"created_at": snap.CreatedAt.String(),
			"row_count":  snap.RowCount,
		})
	}
	writeAdminJSON(w, r, adminListing{Model: "snapshot", ListDisplay: snapshotDisplay, Count: len(rows), Results: rows})
}

func uploadRow(u *dataset.Upload) map[string]interface{} {
	return map[string]interface{}{
		"id":          u.ID.String(),
		"name":        u.Name,
		"uploaded_at": u.UploadedAt.String(),
		"processed":   u.Processed,
		"file_path":   u.FilePath,
		"file_size":   u.FileSize,
		"rows":        u.RowCount,
		"columns":     u.Columns,
	}
}

func writeAdminJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode admin response", "error", err)
	}
}

func writeAdminError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	logging.FromContext(r.Context()).Warn("admin request failed", "path", r.URL.Path, "code", errors.GetCode(err), "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": errors.Message(err),
	})
}
