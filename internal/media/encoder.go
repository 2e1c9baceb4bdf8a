package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// EncoderConfig mirrors the source stream properties onto the output. Video
// codec and container are fixed (H.264 in MP4); audio streams are copied
// verbatim from AudioSource without re-encoding.
type EncoderConfig struct {
	Width        int
	Height       int
	FrameRate    float64
	VideoBitrate int

	// AudioSource is the container whose audio streams are passed through to
	// the output. Empty produces a video-only file.
	AudioSource string
}

// Encoder accepts raw RGBA frames over a pipe into an ffmpeg child process
// that encodes H.264/MP4. It is exclusively owned by one pipeline invocation.
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	closed bool
}

func encoderArgs(outputPath string, cfg EncoderConfig) []string {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.FormatFloat(cfg.FrameRate, 'f', -1, 64),
		"-i", "pipe:0",
	}
	if cfg.AudioSource != "" {
		args = append(args,
			"-i", cfg.AudioSource,
			"-map", "0:v:0",
			"-map", "1:a?",
			"-c:a", "copy",
		)
	} else {
		args = append(args, "-map", "0:v:0")
	}
	return append(args,
		"-c:v", "libx264",
		"-b:v", strconv.Itoa(cfg.VideoBitrate),
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		"-y",
		outputPath,
	)
}

// OpenEncoder starts an encode stream writing to outputPath.
func OpenEncoder(ctx context.Context, outputPath string, cfg EncoderConfig) (*Encoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("encoder config: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("encoder config: invalid frame rate %v", cfg.FrameRate)
	}

	e := &Encoder{}
	e.cmd = exec.CommandContext(ctx, FFmpegPath, encoderArgs(outputPath, cfg)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encode pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", FFmpegPath, err)
	}
	return e, nil
}

// WriteFrame submits one frame to the encoder. The frame must be a full-rect
// buffer of the configured dimensions.
func (e *Encoder) WriteFrame(frame *image.NRGBA) error {
	if _, err := e.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame: %w: %s", err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}

// Close signals end of stream, waits for the encoder to finalize the
// container and reports any encode failure. Safe to call more than once.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("%s encode: %w: %s", FFmpegPath, err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}
