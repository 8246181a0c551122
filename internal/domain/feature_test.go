package domain

import "testing"

func TestResolveFeatureKey(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		background BackgroundMode
		color      string
		source     ModelSource
		want       FeatureKey
	}{
		{"background color", ModeBackground, BackgroundModeColor, "#ff0000", ModelSourceAI, FeatureBackgroundColor},
		{"background scene", ModeBackground, BackgroundModeScene, "#ff0000", ModelSourceAI, FeatureBackgroundScene},
		{"transparent sentinel", ModeBackground, BackgroundModeColor, "transparent", ModelSourceAI, FeatureBackgroundTransparent},
		{"transparent sentinel case insensitive", ModeBackground, BackgroundModeColor, " Transparent ", ModelSourceAI, FeatureBackgroundTransparent},
		{"scene ignores transparent color", ModeBackground, BackgroundModeScene, "transparent", ModelSourceAI, FeatureBackgroundScene},
		{"ai model", ModeAIModel, BackgroundModeColor, "#ff0000", ModelSourceAI, FeatureAIModelAI},
		{"custom model", ModeAIModel, BackgroundModeScene, "transparent", ModelSourceCustom, FeatureAIModelCustom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveFeatureKey(tc.mode, tc.background, tc.color, tc.source)
			if got != tc.want {
				t.Fatalf("ResolveFeatureKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSettingsFeatureKeyRoundTrip(t *testing.T) {
	// A snapshot restored into live settings must resolve to the same key it
	// was recorded under.
	for _, want := range FeatureKeys() {
		s := DefaultSettings()
		switch want {
		case FeatureBackgroundColor:
			s.Mode, s.BackgroundMode, s.BackgroundColor = ModeBackground, BackgroundModeColor, "#00ff00"
		case FeatureBackgroundScene:
			s.Mode, s.BackgroundMode = ModeBackground, BackgroundModeScene
		case FeatureBackgroundTransparent:
			s.Mode, s.BackgroundMode, s.BackgroundColor = ModeBackground, BackgroundModeColor, TransparentColor
		case FeatureAIModelAI:
			s.Mode, s.ModelSource = ModeAIModel, ModelSourceAI
		case FeatureAIModelCustom:
			s.Mode, s.ModelSource = ModeAIModel, ModelSourceCustom
		}
		snap := SettingsSnapshot{Settings: s}
		restored := snap.Settings
		if got := restored.FeatureKey(); got != want {
			t.Fatalf("restored key = %q, want %q", got, want)
		}
	}
}

func TestFeatureKeysStableOrder(t *testing.T) {
	a := FeatureKeys()
	b := FeatureKeys()
	if len(a) != 5 {
		t.Fatalf("FeatureKeys() length = %d, want 5", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("FeatureKeys() order unstable at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestPromptFor(t *testing.T) {
	s := Settings{ScenePrompt: "scene", ModelPrompt: "model", CustomPrompt: "custom"}
	if got := s.PromptFor(FeatureBackgroundScene); got != "scene" {
		t.Fatalf("PromptFor(scene) = %q", got)
	}
	if got := s.PromptFor(FeatureAIModelAI); got != "model" {
		t.Fatalf("PromptFor(ai) = %q", got)
	}
	if got := s.PromptFor(FeatureAIModelCustom); got != "custom" {
		t.Fatalf("PromptFor(custom) = %q", got)
	}
}
