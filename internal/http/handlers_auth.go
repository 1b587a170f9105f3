package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/techcolloid1243/finance-planner/internal/auth"
	"github.com/techcolloid1243/finance-planner/internal/export"
)

type authResponse struct {
	SignedIn bool           `json:"signedIn"`
	Identity *auth.Identity `json:"identity,omitempty"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignIn(); err != nil {
		if errors.Is(err, auth.ErrNoIdentity) {
			writeError(w, http.StatusConflict, "no identity configured")
			return
		}
		slog.ErrorContext(r.Context(), "Sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{SignedIn: true, Identity: s.auth.Current()})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.auth.SignOut()
	writeJSON(w, http.StatusOK, authResponse{SignedIn: false})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := s.auth.Current()
	writeJSON(w, http.StatusOK, authResponse{SignedIn: id != nil, Identity: id})
}

// handleExport streams the workbook download. The operation is
// terminal: encoder errors surface as-is and nothing is retried.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := s.store.Snapshot()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)

	if err := export.Write(snapshot, w); err != nil {
		slog.ErrorContext(r.Context(), "Workbook export failed", "error", err)
	}
}
