package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
)

// Decoder streams the decoded video frames of one input file as raw RGBA
// over a pipe from an ffmpeg child process. It is exclusively owned by one
// pipeline invocation.
type Decoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	frame   *image.NRGBA
	waited  bool
	waitErr error
	closed  bool
}

func decoderArgs(path string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-vsync", "0",
		"pipe:1",
	}
}

// OpenDecoder starts a decode stream on path. info supplies the frame
// dimensions the raw pipe will be sliced by.
func OpenDecoder(ctx context.Context, path string, info *StreamInfo) (*Decoder, error) {
	d := &Decoder{
		frame: image.NewNRGBA(image.Rect(0, 0, info.Width, info.Height)),
	}
	d.cmd = exec.CommandContext(ctx, FFmpegPath, decoderArgs(path)...)
	d.cmd.Stderr = &d.stderr

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decode pipe: %w", err)
	}
	d.stdout = stdout

	if err := d.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", FFmpegPath, err)
	}
	return d, nil
}

// ReadFrame returns the next decoded frame, or io.EOF at end of stream. The
// returned buffer is reused by the following call: the caller owns it only
// until then.
func (d *Decoder) ReadFrame() (*image.NRGBA, error) {
	if _, err := io.ReadFull(d.stdout, d.frame.Pix); err != nil {
		switch {
		case err == io.EOF:
			// Clean end of stream; reap the child so a decode failure that
			// produced zero trailing bytes still surfaces.
			if werr := d.wait(); werr != nil {
				return nil, werr
			}
			return nil, io.EOF
		case err == io.ErrUnexpectedEOF:
			if werr := d.wait(); werr != nil {
				return nil, werr
			}
			return nil, fmt.Errorf("truncated frame from decoder")
		default:
			return nil, err
		}
	}
	return d.frame, nil
}

func (d *Decoder) wait() error {
	if d.waited {
		return d.waitErr
	}
	d.waited = true
	if err := d.cmd.Wait(); err != nil {
		d.waitErr = fmt.Errorf("%s decode: %w: %s", FFmpegPath, err, strings.TrimSpace(d.stderr.String()))
	}
	return d.waitErr
}

// Close releases the decode stream. Safe after EOF and safe to call more
// than once. A Close before end of stream kills the child.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.stdout.Close()
	if !d.waited {
		d.waited = true
		if d.cmd.Process != nil {
			d.cmd.Process.Kill()
		}
		d.cmd.Wait()
	}
	return nil
}
