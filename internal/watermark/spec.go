// Package watermark stamps a repeating, rotated, semi-transparent text
// watermark onto still images and onto every video frame of a video, passing
// audio through untouched.
package watermark

import "image/color"

const (
	// DefaultAngleDegrees is the tilt of the repeated text rows.
	DefaultAngleDegrees = 45

	// DefaultFontSize is used when a caller supplies no size.
	DefaultFontSize = 36

	// VideoBitrate is the fixed output video bitrate in bits per second.
	VideoBitrate = 2_000_000

	// drawMargin is the offset from the canvas edges at which tiling starts
	// and stops, in pixels.
	drawMargin = 10

	// xRepeatFactor and yRepeatFactor are the tile pitch multipliers: the
	// horizontal cursor advances xRepeatFactor·fontSize·len(text) per repeat,
	// the vertical cursor yRepeatFactor·fontSize per row.
	xRepeatFactor = 1
	yRepeatFactor = 4
)

// DefaultColor is the translucent gray fill, alpha 51/255 (about 20%).
var DefaultColor = color.NRGBA{R: 169, G: 169, B: 169, A: 51}

// Spec describes one watermark: the literal text, its point size and the
// tiling geometry. A Spec is a value; the pipelines never mutate it.
type Spec struct {
	Text         string
	FontSize     int
	AngleDegrees float64
	Color        color.NRGBA
	XRepeat      int
	YRepeat      int
	Margin       int
}

// NewSpec returns a Spec for text at fontSize points with the fixed defaults:
// 45° rotation, translucent gray, repeat factors 1×/4× and a 10 px margin.
func NewSpec(text string, fontSize int) Spec {
	return Spec{
		Text:         text,
		FontSize:     fontSize,
		AngleDegrees: DefaultAngleDegrees,
		Color:        DefaultColor,
		XRepeat:      xRepeatFactor,
		YRepeat:      yRepeatFactor,
		Margin:       drawMargin,
	}
}
