package session

import "studio/internal/domain"

// LoadingPhase enumerates the async states a feature slot can be in.
type LoadingPhase string

const (
	PhaseNone       LoadingPhase = "none"
	PhaseGenerating LoadingPhase = "generating"
	// PhaseBlending marks the custom-model pathway once the second source
	// image starts processing.
	PhaseBlending LoadingPhase = "blending"
)

// OperationStatus is one feature's asynchronous operation state. Error holds
// the last collaborator failure message until the user clears it by visiting
// the feature again.
type OperationStatus struct {
	Phase LoadingPhase `json:"phase"`
	Error string       `json:"error,omitempty"`
}

// StatusTracker holds one independently mutable status slot per feature key.
// Concurrent generations on distinct keys never share a slot.
type StatusTracker struct {
	slots map[domain.FeatureKey]OperationStatus
}

// NewStatusTracker allocates a slot for every feature key.
func NewStatusTracker() *StatusTracker {
	t := &StatusTracker{slots: make(map[domain.FeatureKey]OperationStatus, 5)}
	for _, key := range domain.FeatureKeys() {
		t.slots[key] = OperationStatus{Phase: PhaseNone}
	}
	return t
}

// Get returns the feature's current status.
func (t *StatusTracker) Get(key domain.FeatureKey) OperationStatus {
	return t.slots[key]
}

// Busy reports whether a generation is in flight on the feature.
func (t *StatusTracker) Busy(key domain.FeatureKey) bool {
	return t.slots[key].Phase != PhaseNone
}

// SetPhase moves the feature into the given phase, keeping its error.
func (t *StatusTracker) SetPhase(key domain.FeatureKey, phase LoadingPhase) {
	s := t.slots[key]
	s.Phase = phase
	t.slots[key] = s
}

// SetError records a failure message and returns the feature to idle.
func (t *StatusTracker) SetError(key domain.FeatureKey, message string) {
	t.slots[key] = OperationStatus{Phase: PhaseNone, Error: message}
}

// ClearError drops the feature's error without touching its phase, so an
// in-flight job on a feature the user navigated back to keeps loading.
func (t *StatusTracker) ClearError(key domain.FeatureKey) {
	s := t.slots[key]
	s.Error = ""
	t.slots[key] = s
}

// Clear returns the feature slot to its zero state.
func (t *StatusTracker) Clear(key domain.FeatureKey) {
	t.slots[key] = OperationStatus{Phase: PhaseNone}
}

// Reset clears every slot.
func (t *StatusTracker) Reset() {
	for _, key := range domain.FeatureKeys() {
		t.slots[key] = OperationStatus{Phase: PhaseNone}
	}
}

// All returns a copy of every slot keyed by feature.
func (t *StatusTracker) All() map[domain.FeatureKey]OperationStatus {
	out := make(map[domain.FeatureKey]OperationStatus, len(t.slots))
	for key, status := range t.slots {
		out[key] = status
	}
	return out
}
