package watermark

import (
	"image"
	"image/draw"
)

// Composite alpha-blends tile onto dst at the origin, mutating dst in place.
// The tile's own per-pixel alpha (fill color plus font antialiasing) is the
// blend weight; fully transparent tile pixels leave dst byte-identical.
//
// The pipelines always build the tile with dst's exact dimensions; a tile
// larger than dst is a programming error, not a runtime condition.
func Composite(dst *image.NRGBA, tile image.Image) {
	r := tile.Bounds().Sub(tile.Bounds().Min).Add(dst.Bounds().Min)
	draw.Draw(dst, r, tile, tile.Bounds().Min, draw.Over)
}
