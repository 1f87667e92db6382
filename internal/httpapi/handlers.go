package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jot/pkg/auth"
	"github.com/aretw0/jot/pkg/core"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type noteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (req noteRequest) input() core.NoteInput {
	return core.NoteInput{Title: req.Title, Content: req.Content, Tags: req.Tags}
}

type configResponse struct {
	AuthEnabled bool `json:"auth_enabled"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{AuthEnabled: s.guard.Enabled()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	res, err := s.guard.Login(r.PostFormValue("password"), clientKey(r))
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		w.Header().Set("Retry-After", retryAfter(s.guard.Limiter().Config().Window))
		writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	case err != nil:
		s.internalError(w, "login", err)
		return
	}

	if res.Token != "" {
		http.SetCookie(w, s.sessionCookie(res.Token, 0))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	res := s.guard.Logout()
	http.SetCookie(w, s.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := core.Query{
		Text: r.URL.Query().Get("query"),
		Tag:  r.URL.Query().Get("tag"),
	}
	notes, err := s.notes.ListNotes(r.Context(), q)
	if err != nil {
		s.internalError(w, "list notes", err)
		return
	}
	if notes == nil {
		notes = []core.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.GetNote(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	n, err := s.notes.CreateNote(r.Context(), req.input())
	if err != nil {
		s.writeServiceError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	n, err := s.notes.UpdateNote(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		s.writeServiceError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.notes.DeleteNote(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, "delete note", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := map[string]any{
		s.notes.ComponentType(): s.notes.State(),
		s.guard.ComponentType(): s.guard.State(),
	}
	if repo, ok := s.notes.Repository().(introspection.Introspectable); ok {
		name := "repository"
		if c, ok := repo.(introspection.Component); ok {
			name = c.ComponentType()
		}
		state[name] = repo.State()
	}
	if s.throttle != nil {
		state["http"] = map[string]int{"throttled_clients": s.throttle.Len()}
	}
	writeJSON(w, http.StatusOK, state)
}

func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (noteRequest, bool) {
	var req noteRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch status := statusFor(err); status {
	case http.StatusNotFound:
		writeError(w, status, "note not found")
	case http.StatusInternalServerError:
		s.internalError(w, op, err)
	default:
		writeError(w, status, err.Error())
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Detail: message})
}
