package compose

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// BandHeight is the annotation strip under the board.
const BandHeight = 100

const (
	captionLines     = 2
	captionMargin    = 40
	captionTop       = 20
	captionStep      = 35
	descriptionLines = 3
	descriptionStep  = 36
	badgePadding     = 8
)

var (
	bandColor        = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	captionColor     = color.RGBA{A: 0xFF}
	introBackground  = color.RGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF}
	titleColor       = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	descriptionColor = color.RGBA{R: 0xEC, G: 0xF0, B: 0xF1, A: 0xFF}
)

// Composer draws frames of size × (size + BandHeight).
type Composer struct {
	size        int
	caption     font.Face
	title       font.Face
	description font.Face
}

func NewComposer(boardSize int) (*Composer, error) {
	caption, err := regularFace(24)
	if err != nil {
		return nil, err
	}
	title, err := boldFace(48)
	if err != nil {
		return nil, err
	}
	description, err := regularFace(28)
	if err != nil {
		return nil, err
	}
	return &Composer{
		size:        boardSize,
		caption:     caption,
		title:       title,
		description: description,
	}, nil
}

// Bounds is the rectangle of every frame the composer produces.
func (c *Composer) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.size, c.size+BandHeight)
}

// Frame copies the board into the top of dst and writes caption, wrapped
// to two lines, into the band below it.
func (c *Composer) Frame(dst *image.RGBA, board image.Image, caption string) {
	top := image.Rect(0, 0, c.size, c.size).Add(dst.Rect.Min)
	band := image.Rect(0, c.size, c.size, c.size+BandHeight).Add(dst.Rect.Min)

	xdraw.Draw(dst, top, board, board.Bounds().Min, xdraw.Src)
	xdraw.Draw(dst, band, image.NewUniform(bandColor), image.Point{}, xdraw.Src)

	lines := Wrap(c.caption, caption, c.size-captionMargin, captionLines)
	drawCentered(dst, c.caption, captionColor, lines, c.size, c.size+captionTop, captionStep)
}

// IntroCard fills dst with the title card: title above the middle of the
// board area and the description, wrapped to three lines, below it.
func (c *Composer) IntroCard(dst *image.RGBA, title, description string) {
	xdraw.Draw(dst, dst.Rect, image.NewUniform(introBackground), image.Point{}, xdraw.Src)

	if title != "" {
		drawCentered(dst, c.title, titleColor, []string{title}, c.size, c.size/2-100, 0)
	}
	if description != "" {
		lines := Wrap(c.description, description, c.size-100, descriptionLines)
		drawCentered(dst, c.description, descriptionColor, lines, c.size, c.size/2+20, descriptionStep)
	}
}

// Badge draws a QR code for url in the right corner of the annotation band.
func (c *Composer) Badge(dst *image.RGBA, url string) error {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	q.DisableBorder = true

	side := BandHeight - 2*badgePadding
	src := q.Image(side * 2)
	x0 := dst.Rect.Min.X + c.size - side - badgePadding
	y0 := dst.Rect.Min.Y + c.size + badgePadding
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+side, y0+side), src, src.Bounds(), xdraw.Src, nil)
	return nil
}

// AnalysisURL links a position to the lichess analysis board.
func AnalysisURL(fen string) string {
	return "https://lichess.org/analysis/" + strings.ReplaceAll(fen, " ", "_")
}
