// Package phosphorerr defines the typed errors shared across the engine's
// public boundary. Exported operations return (T, error) or error; there is
// no boolean-success-plus-out-parameter pattern anywhere in this module.
package phosphorerr

import "errors"

// Sentinel errors. Compare with errors.Is; wrap with fmt.Errorf("...: %w", ...)
// when adding call-site context.
var (
	ErrLayerCountFloor    = errors.New("document must keep at least one layer")
	ErrLayerNotFound      = errors.New("layer index out of range")
	ErrOutOfBounds        = errors.New("coordinate out of bounds")
	ErrInvalidDimensions  = errors.New("invalid columns/rows")
	ErrGrabOutsideSelection = errors.New("grab point lies outside the current selection")
	ErrNoActiveMove       = errors.New("no floating move is in progress")
	ErrNoSelection        = errors.New("no active selection")
	ErrClipboardEmpty     = errors.New("clipboard is empty")
	ErrNothingToUndo      = errors.New("undo stack is empty")
	ErrNothingToRedo      = errors.New("redo stack is empty")
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrMalformedFile      = errors.New("malformed file")
	ErrCompileFailed      = errors.New("tool program failed to compile")
	ErrMissingEntryPoint  = errors.New("tool program has no render or main entry point")
)
