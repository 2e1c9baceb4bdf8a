package watermark_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mhang/tilemark/internal/watermark"
)

func newFonts(t *testing.T) *watermark.FontProvisioner {
	t.Helper()
	fonts, err := watermark.NewFontProvisioner("")
	if err != nil {
		t.Fatalf("NewFontProvisioner: %v", err)
	}
	return fonts
}

func TestGenerateTileDimensions(t *testing.T) {
	fonts := newFonts(t)
	spec := watermark.NewSpec("CONFIDENTIAL", 36)

	sizes := []struct{ w, h int }{
		{640, 480},
		{1920, 1080},
		{1, 1},
		{101, 37},
	}
	for _, s := range sizes {
		tile, err := watermark.GenerateTile(fonts, s.w, s.h, spec)
		if err != nil {
			t.Fatalf("GenerateTile(%dx%d): %v", s.w, s.h, err)
		}
		if got := tile.Bounds().Dx(); got != s.w {
			t.Errorf("tile width = %d, want %d", got, s.w)
		}
		if got := tile.Bounds().Dy(); got != s.h {
			t.Errorf("tile height = %d, want %d", got, s.h)
		}
	}
}

func TestGenerateTileHasInk(t *testing.T) {
	fonts := newFonts(t)
	tile, err := watermark.GenerateTile(fonts, 400, 300, watermark.NewSpec("tilemark", 36))
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}
	inked := 0
	for i := 3; i < len(tile.Pix); i += 4 {
		if tile.Pix[i] != 0 {
			inked++
		}
	}
	if inked == 0 {
		t.Fatal("tile is fully transparent, expected rendered text")
	}
	// The fill is translucent; the tile must not be opaque everywhere either.
	if inked == len(tile.Pix)/4 {
		t.Fatal("tile is fully opaque, expected transparent background")
	}
}

func TestGenerateTileDeterministic(t *testing.T) {
	fonts := newFonts(t)
	spec := watermark.NewSpec("repeatable", 24)

	a, err := watermark.GenerateTile(fonts, 320, 240, spec)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}
	b, err := watermark.GenerateTile(fonts, 320, 240, spec)
	if err != nil {
		t.Fatalf("GenerateTile: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same inputs produced different tiles")
	}
}

func TestGenerateTileInvalidInputs(t *testing.T) {
	fonts := newFonts(t)

	cases := []struct {
		name string
		w, h int
		spec watermark.Spec
	}{
		{"zero width", 0, 100, watermark.NewSpec("x", 36)},
		{"negative height", 100, -1, watermark.NewSpec("x", 36)},
		{"zero font size", 100, 100, watermark.NewSpec("x", 0)},
		{"empty text", 100, 100, watermark.NewSpec("", 36)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := watermark.GenerateTile(fonts, tc.w, tc.h, tc.spec)
			var rerr *watermark.RenderError
			if !errors.As(err, &rerr) {
				t.Fatalf("err = %v, want *RenderError", err)
			}
		})
	}
}

func TestGenerateTileNilProvisioner(t *testing.T) {
	_, err := watermark.GenerateTile(nil, 100, 100, watermark.NewSpec("x", 36))
	var ferr *watermark.FontLoadError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FontLoadError", err)
	}
}
