package session

import (
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

func newTestSession() *Session {
	return New("test-session", zerolog.Nop())
}

func withProduct(s *Session) *Session {
	s.SetProductImage(domain.AssetState{URL: "data:product", OriginalWidth: 800, OriginalHeight: 600})
	return s
}

func sceneMode() SettingsPatch {
	mode := domain.ModeBackground
	bg := domain.BackgroundModeScene
	return SettingsPatch{Mode: &mode, BackgroundMode: &bg}
}

func aiModelMode() SettingsPatch {
	mode := domain.ModeAIModel
	src := domain.ModelSourceAI
	return SettingsPatch{Mode: &mode, ModelSource: &src}
}

func TestCanvasFallsBackToNothingWhenEmpty(t *testing.T) {
	s := withProduct(newTestSession())
	if _, ok := s.CanvasImage(); ok {
		t.Fatalf("empty session should resolve no canvas image")
	}
}

func TestCanvasFollowsActiveFeatureCursor(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureBackgroundColor, img("color"))
	s.stacks.Push(domain.FeatureBackgroundScene, img("scene"))

	// Default settings address background-color.
	if got, ok := s.CanvasImage(); !ok || got != img("color") {
		t.Fatalf("canvas = %v, want color result", got)
	}

	s.UpdateSettings(sceneMode())
	if got, ok := s.CanvasImage(); !ok || got != img("scene") {
		t.Fatalf("canvas after switch = %v, want scene result", got)
	}
}

func TestExplicitSelectionWinsOverCursor(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureBackgroundColor, img("from-stack"))
	rec := s.log.Append(domain.FeatureBackgroundScene, snap(domain.FeatureBackgroundScene))
	s.log.Complete(rec.ID, img("from-log"))

	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}
	if got, ok := s.CanvasImage(); !ok || got != img("from-log") {
		t.Fatalf("canvas = %v, want log record image", got)
	}
}

func TestSelectRecordRestoresSettings(t *testing.T) {
	s := withProduct(newTestSession())
	recorded := domain.DefaultSettings()
	recorded.Mode = domain.ModeAIModel
	recorded.ModelSource = domain.ModelSourceAI
	recorded.ModelPrompt = "studio portrait"
	recorded.Gender = domain.GenderMale
	rec := s.log.Append(domain.FeatureAIModelAI, domain.SettingsSnapshot{Settings: recorded, ProductImageURL: "data:product"})
	s.log.Complete(rec.ID, img("shot"))

	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}
	got := s.Settings()
	if got.Mode != domain.ModeAIModel || got.ModelPrompt != "studio portrait" || got.Gender != domain.GenderMale {
		t.Fatalf("settings not restored: %+v", got)
	}
	// Selection and restoration are one action: the active feature follows.
	if s.ActiveFeature() != domain.FeatureAIModelAI {
		t.Fatalf("active feature = %q, want ai-model-ai", s.ActiveFeature())
	}
}

func TestSelectLoadingRecordRefused(t *testing.T) {
	s := withProduct(newTestSession())
	rec := s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	if err := s.SelectRecord(rec.ID); err != domain.ErrRecordNotReady {
		t.Fatalf("err = %v, want ErrRecordNotReady", err)
	}
	if err := s.SelectRecord(999); err != domain.ErrRecordNotFound {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestUndoRedoClearExplicitSelection(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureBackgroundColor, img("stacked"))
	rec := s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	s.log.Complete(rec.ID, img("pinned"))
	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}

	s.Undo()
	if s.SelectedRecord() != 0 {
		t.Fatalf("undo should drop the explicit selection")
	}
	// The cursor moved below the only entry, so nothing resolves.
	if _, ok := s.CanvasImage(); ok {
		t.Fatalf("canvas should be empty after undo past the floor")
	}
	s.Redo()
	if got, ok := s.CanvasImage(); !ok || got != img("stacked") {
		t.Fatalf("canvas after redo = %v, want stacked result", got)
	}
}

func TestFeatureSwitchClearsSelectionAndError(t *testing.T) {
	s := withProduct(newTestSession())
	rec := s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	s.log.Complete(rec.ID, img("pinned"))
	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}
	s.status.SetError(domain.FeatureBackgroundScene, "previous failure")
	s.status.SetPhase(domain.FeatureBackgroundScene, PhaseGenerating)

	s.UpdateSettings(sceneMode())

	if s.SelectedRecord() != 0 {
		t.Fatalf("feature switch should drop the explicit selection")
	}
	status := s.Status(domain.FeatureBackgroundScene)
	if status.Error != "" {
		t.Fatalf("arriving feature's error should be cleared, got %q", status.Error)
	}
	if status.Phase != PhaseGenerating {
		t.Fatalf("loading phase must survive a feature switch, got %q", status.Phase)
	}
}

func TestDeleteSelectedRecordFallsBack(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureBackgroundColor, img("stacked"))
	rec := s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	s.log.Complete(rec.ID, img("pinned"))
	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}

	if err := s.DeleteRecord(rec.ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if s.SelectedRecord() != 0 {
		t.Fatalf("deleting the pinned record should clear the selection")
	}
	// The log and the stack are independent views: the image stays reachable.
	if got, ok := s.CanvasImage(); !ok || got != img("stacked") {
		t.Fatalf("canvas = %v, want stack image", got)
	}
}

func TestProductReplacementInvalidatesHistory(t *testing.T) {
	s := withProduct(newTestSession())
	for _, key := range domain.FeatureKeys() {
		s.stacks.Push(key, img(string(key)))
	}
	rec := s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	s.log.Complete(rec.ID, img("done"))
	if err := s.SelectRecord(rec.ID); err != nil {
		t.Fatalf("SelectRecord: %v", err)
	}

	s.SetProductImage(domain.AssetState{URL: "data:new-product", OriginalWidth: 1000, OriginalHeight: 1000})

	for _, key := range domain.FeatureKeys() {
		st := s.stacks.Get(key)
		if st.Len() != 0 || st.Cursor() != -1 {
			t.Fatalf("stack %s = {len %d, cursor %d}, want empty", key, st.Len(), st.Cursor())
		}
	}
	if len(s.History()) != 0 {
		t.Fatalf("log should be empty after product replacement")
	}
	if s.SelectedRecord() != 0 {
		t.Fatalf("selection should be cleared")
	}
}

func TestModelReplacementKeepsHistory(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureAIModelCustom, img("custom"))
	rec := s.log.Append(domain.FeatureAIModelCustom, snap(domain.FeatureAIModelAI))
	s.log.Complete(rec.ID, img("custom"))

	s.SetModelImage(domain.AssetState{URL: "data:new-model"})

	if s.stacks.Get(domain.FeatureAIModelCustom).Len() != 1 {
		t.Fatalf("model replacement must not touch stacks")
	}
	if len(s.History()) != 1 {
		t.Fatalf("model replacement must not touch the log")
	}
}

func TestStartOverClearsEverythingButAssets(t *testing.T) {
	s := withProduct(newTestSession())
	s.SetModelImage(domain.AssetState{URL: "data:model"})
	s.stacks.Push(domain.FeatureBackgroundColor, img("a"))
	s.log.Append(domain.FeatureBackgroundColor, snap(domain.FeatureBackgroundColor))
	s.status.SetError(domain.FeatureBackgroundScene, "boom")
	s.UpdateSettings(sceneMode())

	s.StartOver()

	if got := s.Settings(); got != domain.DefaultSettings() {
		t.Fatalf("settings = %+v, want defaults", got)
	}
	if len(s.History()) != 0 || s.stacks.Get(domain.FeatureBackgroundColor).Len() != 0 {
		t.Fatalf("history should be gone")
	}
	if s.Status(domain.FeatureBackgroundScene).Error != "" {
		t.Fatalf("statuses should be cleared")
	}
	if _, ok := s.ProductImage(); !ok {
		t.Fatalf("uploads should survive start over")
	}
	if _, ok := s.ModelImage(); !ok {
		t.Fatalf("model upload should survive start over")
	}
}

func TestSnapshotViewConsistency(t *testing.T) {
	s := withProduct(newTestSession())
	s.stacks.Push(domain.FeatureBackgroundColor, img("a"))
	s.stacks.Push(domain.FeatureBackgroundColor, img("b"))
	s.Undo()

	v := s.Snapshot()
	if v.ActiveFeature != domain.FeatureBackgroundColor {
		t.Fatalf("active feature = %q", v.ActiveFeature)
	}
	sv := v.Stacks[domain.FeatureBackgroundColor]
	if sv.Count != 2 || sv.Cursor != 0 || !sv.CanUndo || !sv.CanRedo {
		t.Fatalf("stack view = %+v", sv)
	}
	if v.Canvas == nil || *v.Canvas != img("a") {
		t.Fatalf("canvas = %v, want first result", v.Canvas)
	}
	if v.Product == nil {
		t.Fatalf("product missing from view")
	}
}
