package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalizeJPEG(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeJPEG(t, solid(100, 80, color.RGBA{255, 0, 0, 255}))), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 100 || photo.Height != 80 {
		t.Errorf("small photo should keep its size, got %dx%d", photo.Width, photo.Height)
	}
}

func TestNormalizePNGBecomesJPEG(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodePNG(t, solid(40, 40, color.RGBA{0, 0, 255, 255}))), Options{})
	if err != nil {
		t.Fatalf("Normalize PNG: %v", err)
	}
	if _, format, err := image.Decode(bytes.NewReader(photo.Data)); err != nil || format != "jpeg" {
		t.Errorf("expected JPEG output, got %q (%v)", format, err)
	}
}

func TestNormalizeFlattensTransparency(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodePNG(t, solid(8, 8, color.RGBA{0, 0, 0, 0}))), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(4, 4).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestNormalizeDownscalesKeepingAspect(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodeJPEG(t, solid(2000, 1000, color.Gray{128}))), Options{MaxDimension: 500})
	if err != nil {
		t.Fatalf("Normalize large photo: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 250 {
		t.Errorf("expected 500x250, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalizeRejectsOtherFormats(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a...")} {
		_, err := Normalize(bytes.NewReader(data), Options{})
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat for %q, got %v", data, err)
		}
	}
}

func TestNormalizeRejectsOversizedUpload(t *testing.T) {
	data := encodePNG(t, solid(64, 64, color.White))
	_, err := Normalize(bytes.NewReader(data), Options{MaxBytes: int64(len(data) - 1)})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 100, 1024, 100, 100},
		{2048, 2048, 1024, 1024, 1024},
		{3000, 10, 1000, 1000, 3},
		{10, 5000, 1000, 2, 1000},
		{5000, 1, 1000, 1000, 1},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}
