// Package render assembles tile mosaics and overlays routes on them.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/geo"
	"github.com/brandonteo/BearMaps/internal/metrics"
	"github.com/brandonteo/BearMaps/internal/store"
	"github.com/brandonteo/BearMaps/internal/tiles"
)

// Options controls the route overlay stroke.
type Options struct {
	StrokeWidth float64
	StrokeColor color.RGBA
}

// Mosaic blits the solution's tiles onto a single canvas in row-major
// order and, when route has at least two points, strokes it as a polyline
// in the mosaic's pixel space. The route is supplied explicitly by the
// caller; the renderer keeps no state between calls.
//
// A tile that fails to load is logged and skipped, leaving a gap in the
// canvas rather than failing the whole mosaic.
func Mosaic(st *store.Store, sol tiles.Solution, route []geo.Point, opts Options) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, sol.Width, sol.Height))

	x, y := 0, 0
	for _, t := range sol.Tiles {
		img, err := st.Tile(t.Key())
		if err != nil {
			metrics.TileMisses.Inc()
			log.Warn().Err(err).Str("tile", t.Key()).Msg("Skipping missing tile")
		} else {
			r := image.Rect(x, y, x+tiles.TileSize, y+tiles.TileSize)
			draw.Draw(canvas, r, img, img.Bounds().Min, draw.Src)
		}

		// Offsets advance even for a skipped tile so later tiles land in
		// their own cells.
		x += tiles.TileSize
		if x >= sol.Width {
			x = 0
			y += tiles.TileSize
		}
	}

	if len(route) >= 2 {
		strokeRoute(canvas, sol, route, opts)
	}
	return canvas
}

// Encode writes img in the given format ("png" or "webp").
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "", "png":
		return png.Encode(w, img)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 85})
	default:
		return fmt.Errorf("unsupported mosaic format %q", format)
	}
}

// strokeRoute draws the route polyline using the geographic-to-pixel
// transform implied by the solution bounds.
func strokeRoute(canvas *image.RGBA, sol tiles.Solution, route []geo.Point, opts Options) {
	wPPD := float64(sol.Width) / sol.Bounds.Width()
	hPPD := float64(sol.Height) / sol.Bounds.Height()

	toPixel := func(p geo.Point) (float64, float64) {
		return (p.Lon - sol.Bounds.UL.Lon) * wPPD, (sol.Bounds.UL.Lat - p.Lat) * hPPD
	}

	for i := 0; i < len(route)-1; i++ {
		x1, y1 := toPixel(route[i])
		x2, y2 := toPixel(route[i+1])
		strokeSegment(canvas, x1, y1, x2, y2, opts.StrokeWidth/2, opts.StrokeColor)
	}
}

// strokeSegment paints every pixel within half-width of the segment,
// alpha-blending the stroke color over the canvas. Round caps fall out of
// the distance test for free.
func strokeSegment(canvas *image.RGBA, x1, y1, x2, y2, half float64, c color.RGBA) {
	b := canvas.Bounds()
	minX := clampInt(int(math.Floor(math.Min(x1, x2)-half)), b.Min.X, b.Max.X-1)
	maxX := clampInt(int(math.Ceil(math.Max(x1, x2)+half)), b.Min.X, b.Max.X-1)
	minY := clampInt(int(math.Floor(math.Min(y1, y2)-half)), b.Min.Y, b.Max.Y-1)
	maxY := clampInt(int(math.Ceil(math.Max(y1, y2)+half)), b.Min.Y, b.Max.Y-1)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			d := distToSegment(float64(px)+0.5, float64(py)+0.5, x1, y1, x2, y2)
			if d <= half {
				blend(canvas, px, py, c)
			}
		}
	}
}

// distToSegment returns the distance from (px, py) to the segment
// (x1,y1)-(x2,y2), clamping the projection to the segment's extent.
func distToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}

	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

// blend src-over composites c onto the canvas pixel.
func blend(canvas *image.RGBA, x, y int, c color.RGBA) {
	o := canvas.PixOffset(x, y)
	a := uint32(c.A)
	inv := 255 - a

	p := canvas.Pix[o : o+4 : o+4]
	p[0] = uint8((uint32(c.R)*a + uint32(p[0])*inv) / 255)
	p[1] = uint8((uint32(c.G)*a + uint32(p[1])*inv) / 255)
	p[2] = uint8((uint32(c.B)*a + uint32(p[2])*inv) / 255)
	p[3] = uint8((255*a + uint32(p[3])*inv) / 255)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
