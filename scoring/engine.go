// Package scoring turns a submitted raster image into a 0-100 circularity
// score. The pipeline is pure: decode, binarize with an Otsu threshold,
// pick the largest dark region, trace its boundary and compare enclosed
// area to perimeter via the isoperimetric ratio 4πA/P².
package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrUndecodable means the submitted bytes are not a parseable image.
	ErrUndecodable = errors.New("image could not be decoded")

	// ErrNoShapeFound means no foreground region above the noise floor exists.
	ErrNoShapeFound = errors.New("no shape found in image")
)

const (
	// minShapeArea rejects specks and compression noise, in pixels.
	minShapeArea = 64

	// maxPolygonVertices bounds the resampled boundary polygon. Resampling
	// smooths pixel-level jaggedness so a clean circle measures close to 1.
	maxPolygonVertices = 96

	// blurRadius for the denoising pass before thresholding.
	blurRadius = 1.0
)

// Result holds the score and the raw contour metrics it was derived from.
type Result struct {
	// Score is the rounded circularity percentage, clamped to [0, 100].
	Score int

	// Circularity is the raw ratio 4πA/P². 1 for a perfect circle,
	// below 1 for everything else; quantization can push it slightly
	// past 1 on small shapes, which the clamp absorbs.
	Circularity float64

	// Area is the polygon area enclosed by the scored contour, in px².
	Area float64

	// Perimeter is the length of the scored contour polygon, in px.
	Perimeter float64
}

// Engine scores images for circularity. Stateless and safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score analyses the circularity of the largest dark shape in the image.
// Deterministic for identical input bytes. Returns ErrUndecodable or
// ErrNoShapeFound on the two terminal failure conditions.
func (e *Engine) Score(imageBytes []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	gray := toGray(blur.Gaussian(imaging.Grayscale(img), blurRadius))

	// Submitted drawings vary wildly in lighting and contrast, so the
	// threshold is chosen per-image from the intensity histogram.
	level := otsuThreshold(histogram(gray))

	// Foreground is everything darker than the threshold: the drawing.
	binary := segment.Threshold(gray, level)
	mask := newMask(binary)

	shape := mask.largestComponent(minShapeArea)
	if shape == nil {
		return nil, ErrNoShapeFound
	}

	contour := shape.traceBoundary()
	if len(contour) < 4 {
		return nil, ErrNoShapeFound
	}

	polygon := resample(contour, maxPolygonVertices)
	area := polygonArea(polygon)
	perimeter := polygonPerimeter(polygon)
	if perimeter == 0 || area == 0 {
		return nil, ErrNoShapeFound
	}

	circularity := 4 * math.Pi * area / (perimeter * perimeter)
	score := int(math.Round(circularity * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	log.WithFields(log.Fields{
		"score":       score,
		"circularity": circularity,
		"area":        area,
		"perimeter":   perimeter,
		"pixels":      shape.pixels,
	}).Debug("Scored image")

	return &Result{
		Score:       score,
		Circularity: circularity,
		Area:        area,
		Perimeter:   perimeter,
	}, nil
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}
