package domain

// ImageResult is one produced image. URL is either a data URL carrying the
// encoded bytes or a remote location returned by the provider.
type ImageResult struct {
	URL    string `json:"url"`
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AssetState describes one user-supplied source image together with its
// natural pixel dimensions.
type AssetState struct {
	URL            string `json:"url"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
}
