package scoring

import (
	"image"
	"math"
)

// point is a pixel coordinate, origin top-left.
type point struct {
	X, Y int
}

// mask is a binary foreground grid. Foreground pixels are the dark
// (drawn) pixels of the thresholded image.
type mask struct {
	w, h int
	fg   []bool
}

// newMask builds a foreground mask from a thresholded image, where the
// drawing came out black and the background white.
func newMask(binary *image.Gray) *mask {
	bounds := binary.Bounds()
	m := &mask{
		w:  bounds.Dx(),
		h:  bounds.Dy(),
		fg: make([]bool, bounds.Dx()*bounds.Dy()),
	}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if binary.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y == 0 {
				m.fg[y*m.w+x] = true
			}
		}
	}
	return m
}

// component is one connected foreground region.
type component struct {
	m      *mask
	labels []int32
	label  int32
	pixels int
	start  point // first pixel in row-major order: topmost, then leftmost
}

// largestComponent labels 8-connected foreground regions and returns the
// one with the most pixels, or nil if none reaches minArea.
func (m *mask) largestComponent(minArea int) *component {
	labels := make([]int32, len(m.fg))
	var (
		next int32
		best *component
	)

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.fg[y*m.w+x] || labels[y*m.w+x] != 0 {
				continue
			}
			next++
			c := &component{m: m, labels: labels, label: next, start: point{x, y}}
			c.fill(point{x, y})
			if c.pixels >= minArea && (best == nil || c.pixels > best.pixels) {
				best = c
			}
		}
	}

	return best
}

// fill flood-fills one component from a seed, iteratively to avoid deep
// recursion on large shapes.
func (c *component) fill(seed point) {
	stack := []point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= c.m.w || p.Y < 0 || p.Y >= c.m.h {
			continue
		}
		i := p.Y*c.m.w + p.X
		if !c.m.fg[i] || c.labels[i] != 0 {
			continue
		}

		c.labels[i] = c.label
		c.pixels++

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, point{p.X + dx, p.Y + dy})
			}
		}
	}
}

// contains reports whether q is a pixel of this component.
func (c *component) contains(q point) bool {
	if q.X < 0 || q.X >= c.m.w || q.Y < 0 || q.Y >= c.m.h {
		return false
	}
	return c.labels[q.Y*c.m.w+q.X] == c.label
}

// mooreDirs lists the 8 neighbors in clockwise order: W, NW, N, NE, E, SE, S, SW.
var mooreDirs = [8]point{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}}

func dirIndex(d point) int {
	for i, m := range mooreDirs {
		if m == d {
			return i
		}
	}
	return 0
}

// traceBoundary walks the outer boundary of the component with
// Moore-neighbor tracing, stopping when the start pixel is re-entered
// from the original direction. The result is an ordered closed contour.
func (c *component) traceBoundary() []point {
	start := c.start
	// The scan order guarantees the west neighbor of the start pixel is
	// not part of this component.
	firstBacktrack := point{start.X - 1, start.Y}

	p := start
	b := firstBacktrack
	contour := []point{start}

	maxSteps := 4 * c.m.w * c.m.h
	for steps := 0; steps < maxSteps; steps++ {
		i := dirIndex(point{b.X - p.X, b.Y - p.Y})
		found := false
		for k := 1; k <= 8; k++ {
			idx := (i + k) % 8
			q := point{p.X + mooreDirs[idx].X, p.Y + mooreDirs[idx].Y}
			if c.contains(q) {
				b = point{p.X + mooreDirs[(idx+7)%8].X, p.Y + mooreDirs[(idx+7)%8].Y}
				p = q
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel, nothing to walk.
			return contour
		}
		if p == start && b == firstBacktrack {
			break
		}
		contour = append(contour, p)
	}

	return contour
}

// resample thins a contour to at most maxVertices evenly spaced points.
// This smooths out single-pixel jaggedness so the perimeter of a clean
// circle is measured close to its true length rather than its staircase
// length.
func resample(contour []point, maxVertices int) []point {
	step := (len(contour) + maxVertices - 1) / maxVertices
	if step < 1 {
		step = 1
	}
	out := make([]point, 0, len(contour)/step+1)
	for i := 0; i < len(contour); i += step {
		out = append(out, contour[i])
	}
	return out
}

// polygonArea computes the enclosed area of a closed polygon via the
// shoelace formula.
func polygonArea(poly []point) float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += float64(poly[i].X)*float64(poly[j].Y) - float64(poly[j].X)*float64(poly[i].Y)
	}
	return math.Abs(sum) / 2
}

// polygonPerimeter sums the Euclidean edge lengths of a closed polygon.
func polygonPerimeter(poly []point) float64 {
	if len(poly) < 2 {
		return 0
	}
	sum := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		dx := float64(poly[j].X - poly[i].X)
		dy := float64(poly[j].Y - poly[i].Y)
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum
}
