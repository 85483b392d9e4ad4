package scoring

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryFromRows(rows []string) *image.Gray {
	h := len(rows)
	w := len(rows[0])
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestLargestComponent(t *testing.T) {
	binary := binaryFromRows([]string{
		"..........",
		".###......",
		".###......",
		".###..##..",
		"......##..",
		"..........",
	})

	shape := newMask(binary).largestComponent(4)
	require.NotNil(t, shape)
	assert.Equal(t, 9, shape.pixels)
	assert.Equal(t, point{1, 1}, shape.start)
}

func TestLargestComponent_NoneAboveFloor(t *testing.T) {
	binary := binaryFromRows([]string{
		"....",
		".#..",
		"...#",
	})

	assert.Nil(t, newMask(binary).largestComponent(4))
}

func TestTraceBoundary_Square(t *testing.T) {
	binary := binaryFromRows([]string{
		"......",
		".####.",
		".####.",
		".####.",
		".####.",
		"......",
	})

	shape := newMask(binary).largestComponent(1)
	require.NotNil(t, shape)

	contour := shape.traceBoundary()
	// 4x4 square has 12 boundary pixels
	assert.Len(t, contour, 12)
}

func TestPolygonMetrics(t *testing.T) {
	square := []point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	assert.InDelta(t, 100.0, polygonArea(square), 1e-9)
	assert.InDelta(t, 40.0, polygonPerimeter(square), 1e-9)
}

func TestResample(t *testing.T) {
	contour := make([]point, 200)
	for i := range contour {
		contour[i] = point{i, 0}
	}

	out := resample(contour, 50)
	assert.LessOrEqual(t, len(out), 51)
	assert.Equal(t, point{0, 0}, out[0])
}
