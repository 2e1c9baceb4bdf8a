package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"unicode/utf8"

	"github.com/fogleman/gg"
)

// GenerateTile renders the repeating watermark for a width×height frame.
//
// The text grid is drawn on a transparent canvas four times the target size,
// through a drawing context rotated by spec.AngleDegrees about the canvas
// center, and the centered quadrant is then cropped out. Oversizing keeps the
// rotated rows seamless inside the crop; rotating text on an exactly-sized
// canvas would leave clipped corners.
//
// The returned tile is never mutated by the pipelines and may be reused
// read-only across any number of Composite calls.
func GenerateTile(fonts *FontProvisioner, width, height int, spec Spec) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, &RenderError{Reason: fmt.Sprintf("invalid tile size %dx%d", width, height)}
	}
	if spec.FontSize <= 0 {
		return nil, &RenderError{Reason: fmt.Sprintf("invalid font size %d", spec.FontSize)}
	}
	if spec.Text == "" {
		return nil, &RenderError{Reason: "empty watermark text"}
	}
	if fonts == nil {
		return nil, &FontLoadError{Path: "", Err: errors.New("no font provisioner")}
	}

	cw, ch := 4*width, 4*height
	dc := gg.NewContext(cw, ch)
	dc.SetFontFace(fonts.Face(float64(spec.FontSize)))
	dc.SetColor(spec.Color)
	dc.RotateAbout(gg.Radians(spec.AngleDegrees), float64(cw)/2, float64(ch)/2)

	// Horizontal pitch scales with the rune count of the text — a coarse
	// stand-in for measured text width that keeps repeats of longer strings
	// further apart.
	xPitch := spec.XRepeat * spec.FontSize * utf8.RuneCountInString(spec.Text)
	yPitch := spec.YRepeat * spec.FontSize
	for x := spec.Margin; x < cw-spec.Margin; x += xPitch {
		for y := spec.Margin; y < ch-spec.Margin; y += yPitch {
			dc.DrawString(spec.Text, float64(x), float64(y))
		}
	}

	// Crop the centered quadrant: the width×height window at offset
	// (width, height) of the 4× canvas.
	tile := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(tile, tile.Bounds(), dc.Image(), image.Pt(width, height), draw.Src)
	return tile, nil
}
