package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/rbac"
)

// POST /tests
func GenerateTestHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exam.GenerateRequest
		if !decode(w, r, &req) {
			return
		}
		req.Owner = rbac.SubjectFromContext(r.Context())
		t, err := svc.Generate(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t.StudentView())
	}
}

// GET /tests/{testID}
func GetTestHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.Test(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// POST /tests/{testID}/questions/{questionID}/answer  { "answer": "..." }
func AnswerHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answer string `json:"answer"`
		}
		if !decode(w, r, &req) {
			return
		}
		sub, err := svc.Answer(r.Context(),
			chi.URLParam(r, "testID"),
			chi.URLParam(r, "questionID"),
			rbac.SubjectFromContext(r.Context()),
			req.Answer)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// GET /tests/{testID}/results[?user=...]
// Other users' results need results:view-all.
func ResultsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := rbac.SubjectFromContext(r.Context())
		if u := strings.TrimSpace(r.URL.Query().Get("user")); u != "" && u != user {
			if !rbac.Allowed(r, rbac.PermResultsViewAll) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			user = u
		}
		res, err := svc.Results(r.Context(), chi.URLParam(r, "testID"), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
