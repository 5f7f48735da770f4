package text

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
)

// Threshold splits luminance into ink and paper.
const Threshold = 128

// Luminance is the Rec. 709 luma of c in [0,255], unrounded.
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.2126*float64(r>>8) + 0.7152*float64(g>>8) + 0.0722*float64(b>>8)
}

// Binarize converts img to pure black and white. Pixels strictly brighter
// than Threshold become white.
func Binarize(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := uint8(0)
			if Luminance(img.At(x, y)) > Threshold {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}

// Preprocess decodes a PNG, JPEG or GIF payload, binarizes it and returns
// it as PNG.
func Preprocess(payload []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Binarize(img)); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}
