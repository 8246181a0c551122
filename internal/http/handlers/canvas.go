package handlers

import "net/http"

type canvasResponse struct {
	Image  any    `json:"image,omitempty"`
	Source string `json:"source"`
}

// Canvas returns the image the canvas should currently show, resolved as:
// explicit history selection, else the active feature's cursor, else the raw
// product upload, else nothing.
func (a *App) Canvas(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	if img, ok := s.CanvasImage(); ok {
		a.json(w, http.StatusOK, canvasResponse{Image: img, Source: "generated"})
		return
	}
	if product, ok := s.ProductImage(); ok {
		a.json(w, http.StatusOK, canvasResponse{Image: product, Source: "upload"})
		return
	}
	a.json(w, http.StatusOK, canvasResponse{Source: "empty"})
}
