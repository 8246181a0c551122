package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/session"
)

// SessionCreate opens a fresh editing session.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	s := a.Sessions.Create()
	a.json(w, http.StatusCreated, s.Snapshot())
}

// SessionGet returns the whole session view in one consistent read.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionDelete discards the session immediately.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	a.Sessions.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// SettingsUpdate applies a partial control update; switching features clears
// the arriving feature's error and drops any history pin.
func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	var patch session.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	s.UpdateSettings(patch)
	a.json(w, http.StatusOK, s.Snapshot())
}

// SessionReset is the start-over action.
func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	s.StartOver()
	a.json(w, http.StatusOK, s.Snapshot())
}
