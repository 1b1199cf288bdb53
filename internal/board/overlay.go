package board

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
)

// ArrowColor is the translucent green used for the last-move arrow.
var ArrowColor = color.RGBA{R: 0x15, G: 0x78, B: 0x1B, A: 0x80}

// Tint blends c over one square with the given opacity in [0, 1].
func Tint(dst *image.RGBA, square string, size int, c color.RGBA, opacity float64) error {
	rect, err := SquareRect(square, size)
	if err != nil {
		return err
	}
	if opacity <= 0 {
		return nil
	}
	if opacity > 1 {
		opacity = 1
	}
	a := uint8(math.Round(float64(c.A) * opacity))
	src := color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
	draw.Draw(dst, rect.Add(dst.Rect.Min), image.NewUniform(src), image.Point{}, draw.Over)
	return nil
}

// DrawArrow fills an arrow from the center of one square to the center of
// another on a board image of the given size.
func DrawArrow(dst *image.RGBA, from, to string, size int, c color.RGBA) error {
	x0, y0, err := squareCenter(from, size)
	if err != nil {
		return err
	}
	x1, y1, err := squareCenter(to, size)
	if err != nil {
		return err
	}

	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	sq := float64(size) / 8
	shaft := sq * 0.18
	headLen := sq * 0.45
	headWidth := sq * 0.5
	if headLen > length {
		headLen = length
	}

	bx, by := x1-ux*headLen, y1-uy*headLen
	pts := [][2]float64{
		{x0 + nx*shaft/2, y0 + ny*shaft/2},
		{bx + nx*shaft/2, by + ny*shaft/2},
		{bx + nx*headWidth/2, by + ny*headWidth/2},
		{x1, y1},
		{bx - nx*headWidth/2, by - ny*headWidth/2},
		{bx - nx*shaft/2, by - ny*shaft/2},
		{x0 - nx*shaft/2, y0 - ny*shaft/2},
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(c)
	filler.Start(rasterx.ToFixedP(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		filler.Line(rasterx.ToFixedP(p[0], p[1]))
	}
	filler.Stop(true)
	filler.Draw()
	return nil
}
