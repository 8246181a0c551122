package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
)

type assetUploadRequest struct {
	URL string `json:"url"`
}

// AssetUpload replaces one of the two source images. Replacing the product
// wipes every stack and the whole log; replacing the model does not.
func (a *App) AssetUpload(w http.ResponseWriter, r *http.Request) {
	s := a.sessionFromRequest(w, r)
	if s == nil {
		return
	}
	kind := chi.URLParam(r, "kind")
	if kind != "product" && kind != "model" {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be product or model")
		return
	}
	var req assetUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "image url required")
		return
	}

	asset := domain.AssetState{URL: req.URL}
	// Unknown dimensions are tolerated; the image may still render fine.
	if width, height, err := a.Images.Dimensions(r.Context(), req.URL); err == nil {
		asset.OriginalWidth = width
		asset.OriginalHeight = height
	} else {
		a.Logger.Warn().Err(err).Str("session_id", s.ID).Str("kind", kind).
			Msg("could not read image dimensions")
	}

	if kind == "product" {
		s.SetProductImage(asset)
	} else {
		s.SetModelImage(asset)
	}
	a.json(w, http.StatusOK, s.Snapshot())
}
