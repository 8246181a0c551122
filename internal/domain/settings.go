package domain

// Gender options offered for AI-generated models.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Settings holds every control that influences a generation. It is a plain
// value: copying it copies everything, which is what the snapshot discipline
// relies on.
type Settings struct {
	Mode            Mode           `json:"mode"`
	BackgroundMode  BackgroundMode `json:"background_mode"`
	BackgroundColor string         `json:"background_color"`
	ScenePrompt     string         `json:"scene_prompt"`
	AspectRatio     string         `json:"aspect_ratio"`

	// One enhancer toggle per prompt context.
	SceneEnhancer  bool `json:"scene_enhancer"`
	ModelEnhancer  bool `json:"model_enhancer"`
	CustomEnhancer bool `json:"custom_enhancer"`

	ModelSource  ModelSource `json:"model_source"`
	ModelPrompt  string      `json:"model_prompt"`
	CustomPrompt string      `json:"custom_prompt"`
	Gender       Gender      `json:"gender"`
	Style        string      `json:"style"`
	Composition  string      `json:"composition"`
	Lighting     string      `json:"lighting"`
}

// DefaultSettings returns the control values a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Mode:            ModeBackground,
		BackgroundMode:  BackgroundModeColor,
		BackgroundColor: "#ffffff",
		AspectRatio:     "1:1",
		ModelSource:     ModelSourceAI,
		Gender:          GenderFemale,
	}
}

// FeatureKey resolves the feature slot the current controls address.
func (s Settings) FeatureKey() FeatureKey {
	return ResolveFeatureKey(s.Mode, s.BackgroundMode, s.BackgroundColor, s.ModelSource)
}

// PromptFor returns the prompt text belonging to the given feature's context.
func (s Settings) PromptFor(key FeatureKey) string {
	switch key {
	case FeatureAIModelCustom:
		return s.CustomPrompt
	case FeatureAIModelAI:
		return s.ModelPrompt
	default:
		return s.ScenePrompt
	}
}

// SettingsSnapshot freezes the controls plus the source image references at
// submission time. It is captured once and never mutated afterwards, which is
// what makes history restoration exact regardless of later UI changes.
type SettingsSnapshot struct {
	Settings
	ProductImageURL string `json:"product_image_url"`
	ModelImageURL   string `json:"model_image_url"`
}
