package session

import "studio/internal/domain"

// Stack is one feature's undo/redo history of successfully produced images.
// A cursor of -1 means no generated image is selected and the raw source
// should show instead.
type Stack struct {
	images []domain.ImageResult
	cursor int
}

func newStack() *Stack {
	return &Stack{cursor: -1}
}

// Push appends a new result with branch-overwrite semantics: anything after
// the cursor is discarded first, exactly like an editor history.
func (s *Stack) Push(img domain.ImageResult) {
	s.images = append(s.images[:s.cursor+1], img)
	s.cursor = len(s.images) - 1
}

// Undo moves the cursor back one step. A no-op at the floor.
func (s *Stack) Undo() bool {
	if s.cursor < 0 {
		return false
	}
	s.cursor--
	return true
}

// Redo moves the cursor forward one step. A no-op at the ceiling.
func (s *Stack) Redo() bool {
	if s.cursor >= len(s.images)-1 {
		return false
	}
	s.cursor++
	return true
}

// Current returns the image under the cursor, if any.
func (s *Stack) Current() (domain.ImageResult, bool) {
	if s.cursor < 0 || s.cursor >= len(s.images) {
		return domain.ImageResult{}, false
	}
	return s.images[s.cursor], true
}

// CanUndo reports whether Undo would move the cursor.
func (s *Stack) CanUndo() bool { return s.cursor >= 0 }

// CanRedo reports whether Redo would move the cursor.
func (s *Stack) CanRedo() bool { return s.cursor < len(s.images)-1 }

// Len returns the number of retained images.
func (s *Stack) Len() int { return len(s.images) }

// Cursor returns the current index, -1 when nothing is selected.
func (s *Stack) Cursor() int { return s.cursor }

// Reset discards the history entirely.
func (s *Stack) Reset() {
	s.images = nil
	s.cursor = -1
}

// Images returns a copy of the retained results in push order.
func (s *Stack) Images() []domain.ImageResult {
	out := make([]domain.ImageResult, len(s.images))
	copy(out, s.images)
	return out
}

// StackManager keys an independent Stack per feature so "for all features"
// invariants stay mechanically checkable.
type StackManager struct {
	stacks map[domain.FeatureKey]*Stack
}

// NewStackManager allocates an empty stack for every feature key.
func NewStackManager() *StackManager {
	m := &StackManager{stacks: make(map[domain.FeatureKey]*Stack, 5)}
	for _, key := range domain.FeatureKeys() {
		m.stacks[key] = newStack()
	}
	return m
}

func (m *StackManager) stack(key domain.FeatureKey) *Stack {
	s, ok := m.stacks[key]
	if !ok {
		s = newStack()
		m.stacks[key] = s
	}
	return s
}

// Push routes a new result into the feature's stack.
func (m *StackManager) Push(key domain.FeatureKey, img domain.ImageResult) {
	m.stack(key).Push(img)
}

// Undo moves the feature's cursor back; false when already at the floor.
func (m *StackManager) Undo(key domain.FeatureKey) bool { return m.stack(key).Undo() }

// Redo moves the feature's cursor forward; false when already at the tip.
func (m *StackManager) Redo(key domain.FeatureKey) bool { return m.stack(key).Redo() }

// Current returns the feature's image under the cursor, if any.
func (m *StackManager) Current(key domain.FeatureKey) (domain.ImageResult, bool) {
	return m.stack(key).Current()
}

// CanUndo reports whether the feature has anything to undo.
func (m *StackManager) CanUndo(key domain.FeatureKey) bool { return m.stack(key).CanUndo() }

// CanRedo reports whether the feature has anything to redo.
func (m *StackManager) CanRedo(key domain.FeatureKey) bool { return m.stack(key).CanRedo() }

// Reset empties one feature's stack.
func (m *StackManager) Reset(key domain.FeatureKey) { m.stack(key).Reset() }

// ResetAll empties every stack, as on start-over or product replacement.
func (m *StackManager) ResetAll() {
	for _, key := range domain.FeatureKeys() {
		m.stack(key).Reset()
	}
}

// Get exposes the feature's stack for read-side view building.
func (m *StackManager) Get(key domain.FeatureKey) *Stack { return m.stack(key) }
