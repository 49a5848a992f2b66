package http

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/report"
	"github.com/mind-engage/examgrader/internal/storage"
)

// POST /tests/{testID}/report
// Renders every submission of the test to a workbook and stores it.
func CreateReportHandler(svc *exam.Service, bs storage.BlobStore, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, subs, err := svc.Submissions(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := report.WriteResults(t, subs)
		if err != nil {
			writeError(w, err)
			return
		}
		key, err := bs.Put(report.Key(t.ID, now()), bytes.NewReader(data))
		if err != nil {
			writeError(w, err)
			return
		}
		signed, err := bs.SignedURL(key)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"key":         key,
			"url":         "/reports/" + strings.TrimPrefix(key, "reports/"),
			"signed_url":  signed,
			"submissions": len(subs),
		})
	}
}

// MountReports serves stored workbooks: GET /reports/* returns the blob
// at reports/<whatever follows>.
func MountReports(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := path.Clean("/reports/" + chi.URLParam(r, "*"))[1:]
		if !strings.HasPrefix(key, "reports/") {
			http.Error(w, "bad report key", http.StatusBadRequest)
			return
		}
		rc, err := bs.Get(key)
		if err != nil {
			writeError(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", report.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
		_, _ = io.Copy(w, rc)
	})
}
