package domain

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrRecordNotFound      = errors.New("history record not found")
	ErrFeatureBusy         = errors.New("feature already generating")
	ErrMissingProductImage = errors.New("product image required")
	ErrMissingModelImage   = errors.New("model image required")
	ErrMissingPrompt       = errors.New("prompt required")
	ErrRecordNotReady      = errors.New("history record still loading")
)
