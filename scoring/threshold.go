package scoring

import (
	"image"
)

// histogram counts the 256 intensity levels of a grayscale image.
func histogram(gray *image.Gray) [256]int {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride : (y-bounds.Min.Y)*gray.Stride+bounds.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// otsuThreshold picks the intensity level that maximizes between-class
// variance over the histogram. On a degenerate histogram (a blank image)
// it returns the lowest level, leaving the foreground empty.
func otsuThreshold(hist [256]int) uint8 {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 0
	}

	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var (
		sumBackground    float64
		weightBackground int
		bestVariance     float64
		bestLevel        uint8
	)

	for t := 0; t < 256; t++ {
		weightBackground += hist[t]
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(t) * float64(hist[t])
		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sum - sumBackground) / float64(weightForeground)

		diff := meanBackground - meanForeground
		variance := float64(weightBackground) * float64(weightForeground) * diff * diff

		if variance > bestVariance {
			bestVariance = variance
			bestLevel = uint8(t)
		}
	}

	return bestLevel
}
