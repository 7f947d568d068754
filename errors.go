package hackmd

import "errors"

// Sentinel errors for rendering.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrRenderCanceled = errors.New("render canceled")
	ErrUnknownMode    = errors.New("unknown render mode")
)
