package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// Session is one user's in-memory editing state: current controls, uploaded
// sources, per-feature statuses and stacks, the chronological log, and the
// explicit history selection. All state dies with the session.
//
// The browser original ran on a single event loop; the mutex is the Go
// rendition of that. Every transition runs under it and is atomic, and async
// completion handlers re-read the live active feature key under the lock
// instead of trusting whatever was active at submission.
type Session struct {
	ID string

	mu     sync.Mutex
	logger zerolog.Logger

	settings domain.Settings
	product  *domain.AssetState
	model    *domain.AssetState

	status *StatusTracker
	stacks *StackManager
	log    *Log

	// selected pins a log record as the canvas image; 0 means none.
	selected int64
	// notifications flags features that finished a generation while the user
	// was looking elsewhere.
	notifications map[domain.FeatureKey]bool
	// suggesting tracks per-feature prompt-suggestion loading, independent of
	// the generation status tracker.
	suggesting map[domain.FeatureKey]bool

	lastAccess time.Time
}

// New builds an empty session with default controls.
func New(id string, logger zerolog.Logger) *Session {
	return &Session{
		ID:            id,
		logger:        logger.With().Str("session_id", id).Logger(),
		settings:      domain.DefaultSettings(),
		status:        NewStatusTracker(),
		stacks:        NewStackManager(),
		log:           NewLog(),
		notifications: make(map[domain.FeatureKey]bool),
		suggesting:    make(map[domain.FeatureKey]bool),
		lastAccess:    time.Now(),
	}
}

// Touch refreshes the session's idle timer.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

// LastAccess returns when the session was last used.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// activeFeatureLocked resolves the feature the controls currently address.
// Always derived fresh from settings, never cached.
func (s *Session) activeFeatureLocked() domain.FeatureKey {
	return s.settings.FeatureKey()
}

// ActiveFeature returns the feature the user is currently editing.
func (s *Session) ActiveFeature() domain.FeatureKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFeatureLocked()
}

// Settings returns a copy of the live controls.
func (s *Session) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Status returns the feature's operation status.
func (s *Session) Status(key domain.FeatureKey) OperationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Get(key)
}

// SettingsPatch carries a partial settings update; nil fields stay untouched.
type SettingsPatch struct {
	Mode            *domain.Mode           `json:"mode"`
	BackgroundMode  *domain.BackgroundMode `json:"background_mode"`
	BackgroundColor *string                `json:"background_color"`
	ScenePrompt     *string                `json:"scene_prompt"`
	AspectRatio     *string                `json:"aspect_ratio"`
	SceneEnhancer   *bool                  `json:"scene_enhancer"`
	ModelEnhancer   *bool                  `json:"model_enhancer"`
	CustomEnhancer  *bool                  `json:"custom_enhancer"`
	ModelSource     *domain.ModelSource    `json:"model_source"`
	ModelPrompt     *string                `json:"model_prompt"`
	CustomPrompt    *string                `json:"custom_prompt"`
	Gender          *domain.Gender         `json:"gender"`
	Style           *string                `json:"style"`
	Composition     *string                `json:"composition"`
	Lighting        *string                `json:"lighting"`
}

func (p SettingsPatch) apply(s *domain.Settings) {
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.BackgroundMode != nil {
		s.BackgroundMode = *p.BackgroundMode
	}
	if p.BackgroundColor != nil {
		s.BackgroundColor = *p.BackgroundColor
	}
	if p.ScenePrompt != nil {
		s.ScenePrompt = *p.ScenePrompt
	}
	if p.AspectRatio != nil {
		s.AspectRatio = *p.AspectRatio
	}
	if p.SceneEnhancer != nil {
		s.SceneEnhancer = *p.SceneEnhancer
	}
	if p.ModelEnhancer != nil {
		s.ModelEnhancer = *p.ModelEnhancer
	}
	if p.CustomEnhancer != nil {
		s.CustomEnhancer = *p.CustomEnhancer
	}
	if p.ModelSource != nil {
		s.ModelSource = *p.ModelSource
	}
	if p.ModelPrompt != nil {
		s.ModelPrompt = *p.ModelPrompt
	}
	if p.CustomPrompt != nil {
		s.CustomPrompt = *p.CustomPrompt
	}
	if p.Gender != nil {
		s.Gender = *p.Gender
	}
	if p.Style != nil {
		s.Style = *p.Style
	}
	if p.Composition != nil {
		s.Composition = *p.Composition
	}
	if p.Lighting != nil {
		s.Lighting = *p.Lighting
	}
}

// UpdateSettings applies a partial control update. When the update lands on a
// different feature, the switch clears the arriving feature's error, drops
// any explicit log selection, and consumes the feature's pending
// notification. In-flight jobs keep running regardless.
func (s *Session) UpdateSettings(patch SettingsPatch) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.activeFeatureLocked()
	patch.apply(&s.settings)
	after := s.activeFeatureLocked()
	if after != before {
		s.featureSwitchedLocked(after)
	}
	return s.settings
}

func (s *Session) featureSwitchedLocked(to domain.FeatureKey) {
	s.status.ClearError(to)
	s.selected = 0
	delete(s.notifications, to)
}

// SetProductImage replaces the hero subject. A new subject invalidates all
// prior creative history: every stack resets and the log empties.
func (s *Session) SetProductImage(asset domain.AssetState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.product = &asset
	s.stacks.ResetAll()
	s.log.Clear()
	s.selected = 0
	s.notifications = make(map[domain.FeatureKey]bool)
	s.logger.Info().Int("width", asset.OriginalWidth).Int("height", asset.OriginalHeight).
		Msg("product image replaced, history invalidated")
}

// SetModelImage replaces the custom model source. No history impact.
func (s *Session) SetModelImage(asset domain.AssetState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = &asset
}

// ProductImage returns the current product source, if uploaded.
func (s *Session) ProductImage() (domain.AssetState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.product == nil {
		return domain.AssetState{}, false
	}
	return *s.product, true
}

// ModelImage returns the current model source, if uploaded.
func (s *Session) ModelImage() (domain.AssetState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return domain.AssetState{}, false
	}
	return *s.model, true
}

// Undo steps the active feature's history back. Stack-relative navigation
// must not fight an explicit log pin, so the selection is dropped either way.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = 0
	return s.stacks.Undo(s.activeFeatureLocked())
}

// Redo steps the active feature's history forward.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = 0
	return s.stacks.Redo(s.activeFeatureLocked())
}

// SelectRecord pins a Done log record as the canvas image and restores every
// control from its snapshot in the same step, switching the active feature to
// the record's. Selection and restoration are one atomic user action.
func (s *Session) SelectRecord(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.log.Find(id)
	if rec == nil {
		return domain.ErrRecordNotFound
	}
	if rec.Status != RecordDone {
		return domain.ErrRecordNotReady
	}
	s.settings = rec.Snapshot.Settings
	s.selected = id
	delete(s.notifications, rec.Feature)
	return nil
}

// ClearSelection drops the explicit log pin.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = 0
	s.mu.Unlock()
}

// SelectedRecord returns the pinned record id, 0 when none.
func (s *Session) SelectedRecord() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// DeleteRecord removes a log record. Deleting the pinned record makes the
// resolver fall back; the record's stack entry is untouched, so the image
// stays reachable through undo/redo.
func (s *Session) DeleteRecord(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.log.Delete(id) {
		return domain.ErrRecordNotFound
	}
	if s.selected == id {
		s.selected = 0
	}
	return nil
}

// History returns the log newest-first.
func (s *Session) History() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.List()
}

// CanvasImage derives the single image the canvas should show:
// explicit Done selection, else the active feature's cursor, else nothing
// (the caller falls back to the raw product image).
func (s *Session) CanvasImage() (domain.ImageResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvasImageLocked()
}

func (s *Session) canvasImageLocked() (domain.ImageResult, bool) {
	if s.selected != 0 {
		if rec := s.log.Find(s.selected); rec != nil && rec.Status == RecordDone && rec.Image != nil {
			return *rec.Image, true
		}
	}
	return s.stacks.Current(s.activeFeatureLocked())
}

// StartOver resets controls and every piece of generated history. Uploaded
// sources survive; in-flight jobs run to completion but find their log
// records gone and apply nothing.
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = domain.DefaultSettings()
	s.stacks.ResetAll()
	s.log.Clear()
	s.status.Reset()
	s.selected = 0
	s.notifications = make(map[domain.FeatureKey]bool)
	s.logger.Info().Msg("session state reset")
}

// Notifications returns the features holding an unseen result.
func (s *Session) Notifications() []domain.FeatureKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.FeatureKey
	for _, key := range domain.FeatureKeys() {
		if s.notifications[key] {
			out = append(out, key)
		}
	}
	return out
}

// Suggesting reports whether a prompt suggestion is loading for the feature.
func (s *Session) Suggesting(key domain.FeatureKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggesting[key]
}
