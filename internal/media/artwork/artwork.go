// Package artwork turns a video thumbnail into podcast cover art: a square,
// center-cropped JPEG at a fixed edge length.
package artwork

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultSize is the cover edge length podcast directories expect.
const DefaultSize = 1400

const jpegQuality = 90

// Normalize decodes src (JPEG, PNG, GIF, or WebP), crops the largest centered
// square, scales it to size×size, and writes a JPEG to dst.
func Normalize(src, dst string, size int) error {
	if size <= 0 {
		size = DefaultSize
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	img, format, err := image.Decode(in)
	_ = in.Close()
	if err != nil {
		return fmt.Errorf("decode thumbnail: %w", err)
	}

	crop := CenterSquare(img.Bounds())
	if crop.Empty() {
		return errors.New("decode thumbnail: empty image")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, crop, draw.Src, nil)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create cover: %w", err)
	}
	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("encode cover from %s: %w", format, err)
	}
	return out.Close()
}

// CenterSquare returns the largest square centered within bounds.
func CenterSquare(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	side := min(w, h)
	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
