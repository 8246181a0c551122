package handlers

import "net/http"

type generateResponse struct {
	JobID  int64  `json:"job_id"`
	Status string `json:"status"`
}

// Generate starts a generation for the session's active feature. Busy
// features and missing inputs refuse without touching any state.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	jobID, err := a.Orchestrator.Generate(r.Context(), s)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, generateResponse{JobID: jobID, Status: "generating"})
}

type suggestResponse struct {
	Prompt string `json:"prompt"`
}

// Suggest asks the prompt collaborator for an idea and writes it into the
// active feature's prompt field.
func (a *App) Suggest(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	text, err := a.Orchestrator.SuggestPrompt(r.Context(), s)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.json(w, http.StatusOK, suggestResponse{Prompt: text})
}
