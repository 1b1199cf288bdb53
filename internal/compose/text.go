// Package compose lays out full video frames: the board with its
// annotation band, the intro title card and the optional QR badge.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// loadFace parses one of the embedded Go fonts at the given point size.
func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func regularFace(size float64) (font.Face, error) { return loadFace(goregular.TTF, size) }

func boldFace(size float64) (font.Face, error) { return loadFace(gobold.TTF, size) }

// TextWidth measures s in pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Wrap breaks text into lines no wider than maxWidth and keeps at most
// maxLines of them. A single word wider than maxWidth gets a line of its own.
func Wrap(face font.Face, text string, maxWidth, maxLines int) []string {
	var lines []string
	var current []string

	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if TextWidth(face, strings.Join(current, " ")) <= maxWidth {
			continue
		}
		if len(current) > 1 {
			lines = append(lines, strings.Join(current[:len(current)-1], " "))
			current = []string{word}
		} else {
			lines = append(lines, word)
			current = nil
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// drawCentered writes lines centered horizontally within width, the first
// line's top edge at y, advancing by step pixels per line.
func drawCentered(dst *image.RGBA, face font.Face, c color.Color, lines []string, width, y, step int) {
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	for _, line := range lines {
		x := (width - TextWidth(face, line)) / 2
		if x < 0 {
			x = 0
		}
		d.Dot = fixed.P(dst.Rect.Min.X+x, dst.Rect.Min.Y+y+ascent)
		d.DrawString(line)
		y += step
	}
}
