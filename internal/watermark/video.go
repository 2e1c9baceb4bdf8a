package watermark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mhang/tilemark/internal/media"
)

// WatermarkVideo stamps the watermark tile onto every video frame of
// inputPath and writes an H.264/MP4 file to outputPath. Frame rate and the
// audio track are carried over from the source; audio is a pure passthrough
// (container-level stream copy, byte-identical payloads).
//
// The tile is generated exactly once, before the frame loop, and reused
// read-only for every frame. The loop is strictly sequential: each frame is
// pulled, composited and submitted before the next is read, so frame order
// is preserved exactly. Both streams are released on every exit path, and a
// failed run removes the partial output file.
func (p *Pipeline) WatermarkVideo(ctx context.Context, inputPath, outputPath string, spec Spec) (err error) {
	info, err := p.probe(ctx, inputPath)
	if err != nil {
		return &DecodeError{Path: inputPath, Err: err}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return &StreamConfigError{Reason: fmt.Sprintf("source reports %dx%d video", info.Width, info.Height)}
	}
	if info.FrameRate <= 0 {
		return &StreamConfigError{Reason: fmt.Sprintf("source reports frame rate %v", info.FrameRate)}
	}

	tile, err := GenerateTile(p.fonts, info.Width, info.Height, spec)
	if err != nil {
		return err
	}

	src, err := p.openDecoder(ctx, inputPath, info)
	if err != nil {
		return &DecodeError{Path: inputPath, Err: err}
	}
	defer src.Close()

	cfg := media.EncoderConfig{
		Width:        info.Width,
		Height:       info.Height,
		FrameRate:    info.FrameRate,
		VideoBitrate: VideoBitrate,
	}
	if info.HasAudio {
		cfg.AudioSource = inputPath
	}

	sink, err := p.openEncoder(ctx, outputPath, cfg)
	if err != nil {
		return &EncodeError{Path: outputPath, Err: err}
	}
	defer func() {
		// Close always runs, flushing the encoder on success and releasing
		// it on failure. A close failure means the container was never
		// finalized, so it fails the operation too.
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = &EncodeError{Path: outputPath, Err: cerr}
		}
		if err != nil {
			os.Remove(outputPath)
		}
	}()

	for {
		frame, rerr := src.ReadFrame()
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			err = &DecodeError{Path: inputPath, Err: rerr}
			return err
		}
		Composite(frame, tile)
		if werr := sink.WriteFrame(frame); werr != nil {
			err = &EncodeError{Path: outputPath, Err: werr}
			return err
		}
	}
}
