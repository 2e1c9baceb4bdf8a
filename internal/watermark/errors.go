package watermark

import "fmt"

// The pipelines fail with exactly one of the error kinds below. Callers that
// only need a pass/fail signal (the CLI, the job worker) collapse them; callers
// that care can pick the kind apart with errors.As.

// FontLoadError reports a font asset that could not be opened or parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string { return fmt.Sprintf("load font %s: %v", e.Path, e.Err) }
func (e *FontLoadError) Unwrap() error { return e.Err }

// RenderError reports tile parameters the generator cannot build a canvas for.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string { return "render watermark tile: " + e.Reason }

// DecodeError reports unreadable or corrupt input media.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure writing output media: unwritable path,
// codec negotiation failure, disk full.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode %s: %v", e.Path, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// StreamConfigError reports source stream properties the encoder cannot be
// configured with, e.g. zero video dimensions.
type StreamConfigError struct {
	Reason string
}

func (e *StreamConfigError) Error() string { return "stream config: " + e.Reason }
