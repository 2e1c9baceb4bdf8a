package watermark

import (
	"context"
	"image"

	"github.com/mhang/tilemark/internal/media"
)

// FrameSource yields decoded video frames in presentation order. ReadFrame
// returns io.EOF at end of stream; the returned buffer belongs to the caller
// only until the next ReadFrame call.
type FrameSource interface {
	ReadFrame() (*image.NRGBA, error)
	Close() error
}

// FrameSink accepts composited frames in submission order. Close flushes the
// encoder and finalizes the container.
type FrameSink interface {
	WriteFrame(*image.NRGBA) error
	Close() error
}

// Pipeline runs watermark operations against a shared font provisioner and
// the external media decode/encode collaborator. One Pipeline may serve many
// invocations concurrently: each invocation owns its own streams and tile,
// and the provisioner is read-only.
type Pipeline struct {
	fonts *FontProvisioner

	// Collaborator constructors. Production wiring points at the ffmpeg
	// wrappers in internal/media; tests substitute in-memory fakes.
	probe       func(ctx context.Context, path string) (*media.StreamInfo, error)
	openDecoder func(ctx context.Context, path string, info *media.StreamInfo) (FrameSource, error)
	openEncoder func(ctx context.Context, path string, cfg media.EncoderConfig) (FrameSink, error)
}

// NewPipeline returns a Pipeline using the ffmpeg/ffprobe collaborators.
func NewPipeline(fonts *FontProvisioner) *Pipeline {
	return &Pipeline{
		fonts: fonts,
		probe: media.Probe,
		openDecoder: func(ctx context.Context, path string, info *media.StreamInfo) (FrameSource, error) {
			return media.OpenDecoder(ctx, path, info)
		},
		openEncoder: func(ctx context.Context, path string, cfg media.EncoderConfig) (FrameSink, error) {
			return media.OpenEncoder(ctx, path, cfg)
		},
	}
}
