// Package visual renders the ciphertext binary as a heat-map image.
package visual

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"slices"

	"github.com/programme-lv/cardiorisk/internal/exchange"
)

var ErrEmpty = errors.New("ciphertext binary is empty")

// Sizes are the supported square edge lengths in pixels.
var Sizes = []int{128, 256, 512}

const DefaultSize = 256

// HeatMap lays the bytes of data row by row over a size×size image,
// repeating them when there are too few and dropping the excess. A byte v
// becomes the pixel (v, 255-v, 128).
func HeatMap(data []byte, size int) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if !slices.Contains(Sizes, size) {
		return nil, fmt.Errorf("unsupported image size %d, use one of %v", size, Sizes)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < size*size; i++ {
		v := data[i%len(data)]
		img.SetRGBA(i%size, i/size, color.RGBA{R: v, G: 255 - v, B: 128, A: 255})
	}
	return img, nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Render reads the ciphertext binary from the layout and writes its
// heat-map to outPath.
func Render(l exchange.Layout, size int, outPath string) error {
	data, err := exchange.ReadCiphertextBinary(l)
	if err != nil {
		return err
	}
	img, err := HeatMap(data, size)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
