package ocr

import (
	"image"
	"math"
	"slices"

	"golang.org/x/image/draw"
)

// Filter configures the preprocessing chain applied before recognition.
type Filter struct {
	// Scale resamples the image by this factor; values <= 1 leave size alone.
	Scale float64
	// Contrast is the enhancement factor; 1 is the identity, 0 disables.
	Contrast float64
	// Median applies a 3x3 median filter for speckle removal.
	Median bool
}

// DefaultFilter mirrors the grayscale, contrast x2, median chain.
func DefaultFilter() Filter {
	return Filter{Scale: 1, Contrast: 2, Median: true}
}

// Preprocess converts img to grayscale and then applies scaling, contrast
// enhancement and noise reduction in that order.
func Preprocess(img image.Image, f Filter) *image.Gray {
	g := Grayscale(img)
	if f.Scale > 1 {
		g = Upscale(g, f.Scale)
	}
	if f.Contrast > 0 && f.Contrast != 1 {
		g = EnhanceContrast(g, f.Contrast)
	}
	if f.Median {
		g = MedianFilter(g)
	}
	return g
}

// Grayscale returns a luma-only copy of img with its origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Upscale resamples g by factor using Catmull-Rom interpolation.
func Upscale(g *image.Gray, factor float64) *image.Gray {
	b := g.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w <= 0 || h <= 0 {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// EnhanceContrast pushes every pixel away from the image's mean luminance by
// factor, clamping to [0,255].
func EnhanceContrast(g *image.Gray, factor float64) *image.Gray {
	if len(g.Pix) == 0 {
		return g
	}
	b := g.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += float64(g.GrayAt(x, y).Y)
		}
	}
	mean := math.Floor(sum/float64(b.Dx()*b.Dy()) + 0.5)

	var lut [256]uint8
	for i := range lut {
		lut[i] = clamp(mean + factor*(float64(i)-mean))
	}

	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Pix[out.PixOffset(x, y)] = lut[g.Pix[g.PixOffset(x, y)]]
		}
	}
	return out
}

// MedianFilter replaces each pixel with the median of its 3x3 neighbourhood.
// Pixels past the border are taken from the nearest edge.
func MedianFilter(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	var win [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px := min(max(x+dx, b.Min.X), b.Max.X-1)
					py := min(max(y+dy, b.Min.Y), b.Max.Y-1)
					win[n] = g.Pix[g.PixOffset(px, py)]
					n++
				}
			}
			s := win[:]
			slices.Sort(s)
			out.Pix[out.PixOffset(x, y)] = s[4]
		}
	}
	return out
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
