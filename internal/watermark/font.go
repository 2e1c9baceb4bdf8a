package watermark

import (
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// embeddedFontName is reported as the path when the built-in face is used.
const embeddedFontName = "goregular (embedded)"

// FontProvisioner holds one parsed TrueType font and derives rendering faces
// from it at requested point sizes. The parsed font is immutable after
// construction, so a single provisioner can be shared by concurrent pipeline
// invocations.
type FontProvisioner struct {
	font *truetype.Font
	path string
}

// NewFontProvisioner parses the TrueType font file at path. An empty path
// selects the embedded Go Regular face, so the pipelines work on hosts with
// no fonts installed and tests need no fixture files.
func NewFontProvisioner(path string) (*FontProvisioner, error) {
	if path == "" {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, &FontLoadError{Path: embeddedFontName, Err: err}
		}
		return &FontProvisioner{font: f, path: embeddedFontName}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return &FontProvisioner{font: f, path: path}, nil
}

// Path returns where the font was loaded from.
func (p *FontProvisioner) Path() string { return p.path }

// Face derives a rendering face at the given point size (72 DPI). Faces are
// not safe for concurrent use; each pipeline invocation derives its own.
func (p *FontProvisioner) Face(points float64) font.Face {
	return truetype.NewFace(p.font, &truetype.Options{Size: points})
}
