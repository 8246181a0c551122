package domain

import "strings"

// Mode selects which creative pathway the user is editing.
type Mode string

const (
	ModeBackground Mode = "background"
	ModeAIModel    Mode = "ai-model"
)

// BackgroundMode enumerates the background sub-modes.
type BackgroundMode string

const (
	BackgroundModeColor BackgroundMode = "color"
	BackgroundModeScene BackgroundMode = "scene"
)

// ModelSource enumerates where the model in an ai-model shot comes from.
type ModelSource string

const (
	ModelSourceAI     ModelSource = "ai"
	ModelSourceCustom ModelSource = "custom"
)

// TransparentColor is the sentinel background color that routes a color
// generation onto the transparent pathway.
const TransparentColor = "transparent"

// FeatureKey identifies one independently tracked creative pathway. Every
// status slot, undo/redo stack and log record is keyed by it.
type FeatureKey string

const (
	FeatureBackgroundColor       FeatureKey = "background-color"
	FeatureBackgroundScene       FeatureKey = "background-scene"
	FeatureBackgroundTransparent FeatureKey = "background-transparent"
	FeatureAIModelAI             FeatureKey = "ai-model-ai"
	FeatureAIModelCustom         FeatureKey = "ai-model-custom"
)

// FeatureKeys lists every feature slot in a stable order.
func FeatureKeys() []FeatureKey {
	return []FeatureKey{
		FeatureBackgroundColor,
		FeatureBackgroundScene,
		FeatureBackgroundTransparent,
		FeatureAIModelAI,
		FeatureAIModelCustom,
	}
}

// IsBackground reports whether the key belongs to the background mode.
func (k FeatureKey) IsBackground() bool {
	return k == FeatureBackgroundColor || k == FeatureBackgroundScene || k == FeatureBackgroundTransparent
}

// ResolveFeatureKey maps the current control values onto the feature slot
// they address. Pure; callers must re-resolve after every control mutation
// rather than caching the result, since a stale key is how a slow completion
// ends up writing into the wrong slot.
func ResolveFeatureKey(mode Mode, background BackgroundMode, color string, source ModelSource) FeatureKey {
	if mode == ModeAIModel {
		if source == ModelSourceCustom {
			return FeatureAIModelCustom
		}
		return FeatureAIModelAI
	}
	if background == BackgroundModeColor {
		if strings.EqualFold(strings.TrimSpace(color), TransparentColor) {
			return FeatureBackgroundTransparent
		}
		return FeatureBackgroundColor
	}
	return FeatureBackgroundScene
}
