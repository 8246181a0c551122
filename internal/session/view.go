package session

import "studio/internal/domain"

// StackView summarizes one feature's undo/redo state for the UI.
type StackView struct {
	Count   int  `json:"count"`
	Cursor  int  `json:"cursor"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// View is a consistent read of the whole session, taken under one lock so the
// UI never observes a half-applied transition.
type View struct {
	ID            string                                `json:"id"`
	Settings      domain.Settings                       `json:"settings"`
	ActiveFeature domain.FeatureKey                     `json:"active_feature"`
	Product       *domain.AssetState                    `json:"product,omitempty"`
	Model         *domain.AssetState                    `json:"model,omitempty"`
	Statuses      map[domain.FeatureKey]OperationStatus `json:"statuses"`
	Stacks        map[domain.FeatureKey]StackView       `json:"stacks"`
	History       []*Record                             `json:"history"`
	SelectedID    int64                                 `json:"selected_id,omitempty"`
	Notifications []domain.FeatureKey                   `json:"notifications,omitempty"`
	Suggesting    map[domain.FeatureKey]bool            `json:"suggesting,omitempty"`
	Canvas        *domain.ImageResult                   `json:"canvas,omitempty"`
}

// Snapshot builds the UI view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:            s.ID,
		Settings:      s.settings,
		ActiveFeature: s.activeFeatureLocked(),
		Statuses:      s.status.All(),
		Stacks:        make(map[domain.FeatureKey]StackView, 5),
		History:       s.log.List(),
		SelectedID:    s.selected,
	}
	if s.product != nil {
		product := *s.product
		v.Product = &product
	}
	if s.model != nil {
		model := *s.model
		v.Model = &model
	}
	for _, key := range domain.FeatureKeys() {
		st := s.stacks.Get(key)
		v.Stacks[key] = StackView{
			Count:   st.Len(),
			Cursor:  st.Cursor(),
			CanUndo: st.CanUndo(),
			CanRedo: st.CanRedo(),
		}
	}
	for _, key := range domain.FeatureKeys() {
		if s.notifications[key] {
			v.Notifications = append(v.Notifications, key)
		}
	}
	if len(s.suggesting) > 0 {
		v.Suggesting = make(map[domain.FeatureKey]bool, len(s.suggesting))
		for key := range s.suggesting {
			v.Suggesting[key] = true
		}
	}
	if img, ok := s.canvasImageLocked(); ok {
		v.Canvas = &img
	}
	return v
}
