package board

import (
	"fmt"
	"image"

	"github.com/notnil/chess"
)

// parseSquare converts algebraic coordinates such as "e4" to a chess.Square.
func parseSquare(name string) (chess.Square, error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return chess.NoSquare, fmt.Errorf("invalid square %q", name)
	}
	file := int(name[0] - 'a')
	rank := int(name[1] - '1')
	return chess.Square(rank*8 + file), nil
}

// SquareRect returns the pixel area of a square on a board of the given
// size, seen from White's side.
func SquareRect(name string, size int) (image.Rectangle, error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return image.Rectangle{}, fmt.Errorf("invalid square %q", name)
	}
	file := int(name[0] - 'a')
	row := 7 - int(name[1]-'1')

	x0 := file * size / 8
	y0 := row * size / 8
	x1 := (file + 1) * size / 8
	y1 := (row + 1) * size / 8
	return image.Rect(x0, y0, x1, y1), nil
}

// squareCenter returns the center of a square in pixel coordinates.
func squareCenter(name string, size int) (float64, float64, error) {
	r, err := SquareRect(name, size)
	if err != nil {
		return 0, 0, err
	}
	return float64(r.Min.X+r.Max.X) / 2, float64(r.Min.Y+r.Max.Y) / 2, nil
}
