package artwork

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestCenterSquare(t *testing.T) {
	tests := []struct {
		in   image.Rectangle
		want image.Rectangle
	}{
		{image.Rect(0, 0, 1280, 720), image.Rect(280, 0, 1000, 720)},
		{image.Rect(0, 0, 300, 500), image.Rect(0, 100, 300, 400)},
		{image.Rect(10, 10, 110, 110), image.Rect(10, 10, 110, 110)},
	}
	for _, tc := range tests {
		if got := CenterSquare(tc.in); got != tc.want {
			t.Fatalf("CenterSquare(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeProducesSquareJPEG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "thumb.png")
	dst := filepath.Join(dir, "cover.jpg")

	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	for x := 0; x < 320; x++ {
		for y := 0; y < 180; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	file, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
	_ = file.Close()

	if err := Normalize(src, dst, 400); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	out, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open cover: %v", err)
	}
	defer out.Close()
	cover, err := jpeg.Decode(out)
	if err != nil {
		t.Fatalf("cover is not a JPEG: %v", err)
	}
	if cover.Bounds().Dx() != 400 || cover.Bounds().Dy() != 400 {
		t.Fatalf("expected 400x400 cover, got %v", cover.Bounds())
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "thumb.jpg")
	if err := os.WriteFile(src, []byte("<html>not an image</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Normalize(src, filepath.Join(dir, "cover.jpg"), 100); err == nil {
		t.Fatal("expected decode error")
	}
}
