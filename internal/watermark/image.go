package watermark

import (
	"context"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// WatermarkImage decodes the image at inputPath, stamps the watermark tile
// across it and writes the result to outputPath as PNG. The tile is sized to
// the decoded image, so output dimensions always equal input dimensions.
func (p *Pipeline) WatermarkImage(ctx context.Context, inputPath, outputPath string, spec Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return &DecodeError{Path: inputPath, Err: err}
	}

	// Clone into a fresh frame buffer the compositor may mutate.
	buf := imaging.Clone(src)
	w := buf.Bounds().Dx()
	h := buf.Bounds().Dy()

	tile, err := GenerateTile(p.fonts, w, h, spec)
	if err != nil {
		return err
	}
	Composite(buf, tile)

	if err := writePNG(buf, outputPath); err != nil {
		return &EncodeError{Path: outputPath, Err: err}
	}
	return nil
}

// writePNG writes buf to path, removing any partial file on failure so a
// failed run never leaves output behind that a later read would take for
// valid media.
func writePNG(buf *image.NRGBA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, buf, imaging.PNG); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
