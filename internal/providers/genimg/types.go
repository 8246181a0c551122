package genimg

import (
	"context"
	"errors"
	"fmt"
)

// FailureReason classifies why a generation was rejected or lost.
type FailureReason string

const (
	ReasonSafety    FailureReason = "safety"
	ReasonPolicy    FailureReason = "content-policy"
	ReasonRegion    FailureReason = "region"
	ReasonTransient FailureReason = "transient"
	ReasonMalformed FailureReason = "malformed"
)

// GenerationError carries the human-readable message surfaced to the user as
// the feature's error state.
type GenerationError struct {
	Reason  FailureReason
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generation failed (%s)", e.Reason)
}

// AsGenerationError unwraps err into a GenerationError if one is present.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// PreparedImage is a source image resized and letterboxed for submission.
type PreparedImage struct {
	DataURL        string
	OriginalWidth  int
	OriginalHeight int
}

// BackgroundKind selects the background pathway the provider should render.
type BackgroundKind string

const (
	BackgroundColor       BackgroundKind = "color"
	BackgroundScene       BackgroundKind = "scene"
	BackgroundTransparent BackgroundKind = "transparent"
)

// BackgroundRequest describes one background-compositing generation.
type BackgroundRequest struct {
	Product     PreparedImage
	Kind        BackgroundKind
	Color       string
	ScenePrompt string
	AspectRatio string
	Enhancer    bool
}

// ModelShotRequest describes one AI-model shot generation. Model is set only
// on the custom pathway, where a second source image is blended in.
type ModelShotRequest struct {
	Prompt      string
	Gender      string
	Style       string
	Composition string
	Lighting    string
	Enhancer    bool
	Product     PreparedImage
	Model       *PreparedImage
}

// SuggestRequest asks the provider for a prompt idea matching the sources.
type SuggestRequest struct {
	Product PreparedImage
	Mode    string
	Model   *PreparedImage
}

// BackgroundGenerator produces a composited background image URL.
type BackgroundGenerator interface {
	GenerateBackground(ctx context.Context, req BackgroundRequest) (string, error)
}

// ModelShotGenerator produces an AI-model shot image URL.
type ModelShotGenerator interface {
	GenerateModelShot(ctx context.Context, req ModelShotRequest) (string, error)
}

// PromptSuggester proposes prompt text for the given sources.
type PromptSuggester interface {
	SuggestPrompt(ctx context.Context, req SuggestRequest) (string, error)
}
