package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Undo steps the active feature's image history back one entry.
func (a *App) Undo(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	s.Undo()
	a.json(w, http.StatusOK, s.Snapshot())
}

// Redo steps the active feature's image history forward one entry.
func (a *App) Redo(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	s.Redo()
	a.json(w, http.StatusOK, s.Snapshot())
}

func recordIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "record_id"), 10, 64)
	return id, err == nil && id > 0
}

// HistorySelect pins a log record as the canvas image and restores its
// settings snapshot in the same step.
func (a *App) HistorySelect(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	id, ok := recordIDFromRequest(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "record_id required")
		return
	}
	if err := s.SelectRecord(id); err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.json(w, http.StatusOK, s.Snapshot())
}

// HistoryDelete removes a log record; its stack entry survives.
func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	id, ok := recordIDFromRequest(r)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "record_id required")
		return
	}
	if err := s.DeleteRecord(id); err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.json(w, http.StatusOK, s.Snapshot())
}
