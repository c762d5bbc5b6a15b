package thumbs

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/begraf/spur/filesystem"
)

// writeSourceImage writes a w x h PNG into dir and returns its path.
func writeSourceImage(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestCreateAndGet(t *testing.T) {
	dir := t.TempDir()
	cache := NewCacheAt(filepath.Join(dir, "cache"))

	src := writeSourceImage(t, dir, 400, 200)

	thumb, err := cache.Create(src)
	if err != nil {
		t.Fatal(err)
	}

	b := thumb.Bounds()
	if b.Dx() != ThumbSize || b.Dy() != ThumbSize/2 {
		t.Errorf("thumbnail = %dx%d, expected %dx%d", b.Dx(), b.Dy(), ThumbSize, ThumbSize/2)
	}

	if !cache.Exists(src) {
		t.Fatal("freshly created thumbnail not found")
	}

	got, ok := cache.Get(src)
	if !ok {
		t.Fatal("Get missed after Create")
	}
	gb := got.Bounds()
	if gb.Dx() != b.Dx() || gb.Dy() != b.Dy() {
		t.Errorf("cached thumbnail = %dx%d, created = %dx%d", gb.Dx(), gb.Dy(), b.Dx(), b.Dy())
	}
}

func TestGetMissesUnknownSource(t *testing.T) {
	dir := t.TempDir()
	cache := NewCacheAt(filepath.Join(dir, "cache"))

	src := writeSourceImage(t, dir, 10, 10)

	if _, ok := cache.Get(src); ok {
		t.Error("hit for a source never cached")
	}
	if _, ok := cache.Get(filepath.Join(dir, "missing.png")); ok {
		t.Error("hit for a nonexistent source")
	}
}

func TestGetMissesAfterSourceChange(t *testing.T) {
	dir := t.TempDir()
	cache := NewCacheAt(filepath.Join(dir, "cache"))

	src := writeSourceImage(t, dir, 300, 300)
	if _, err := cache.Create(src); err != nil {
		t.Fatal(err)
	}

	// Rewriting the source with different dimensions changes its size.
	writeSourceImage(t, dir, 200, 100)

	if cache.Exists(src) {
		t.Error("stale thumbnail served after the source changed")
	}

	// Re-creating refreshes the cache slot.
	if _, err := cache.Create(src); err != nil {
		t.Fatal(err)
	}
	if !cache.Exists(src) {
		t.Error("recreated thumbnail not found")
	}
}

func TestGetMissesAfterMtimeChange(t *testing.T) {
	dir := t.TempDir()
	cache := NewCacheAt(filepath.Join(dir, "cache"))

	src := writeSourceImage(t, dir, 300, 300)
	if _, err := cache.Create(src); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatal(err)
	}

	if cache.Exists(src) {
		t.Error("thumbnail served although the source mtime changed")
	}
}

func TestCreateMetadata(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cache := NewCacheAt(cacheDir)

	src := writeSourceImage(t, dir, 256, 64)
	if _, err := cache.Create(src); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("%d cache entries, expected 1", len(entries))
	}

	raw, err := os.ReadFile(filepath.Join(cacheDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}

	texts, err := readTextChunks(raw)
	if err != nil {
		t.Fatal(err)
	}

	if texts[keyWidth] != "256" || texts[keyHeight] != "64" {
		t.Errorf("source dimensions recorded as %sx%s", texts[keyWidth], texts[keyHeight])
	}
	if texts[keySoftware] != "spur" {
		t.Errorf("software tag = %q", texts[keySoftware])
	}

	realpath, err := filesystem.Realpath(src)
	if err != nil {
		t.Fatal(err)
	}
	if texts[keyURI] != "file://"+realpath {
		t.Errorf("URI tag = %q", texts[keyURI])
	}

	// The annotated file still decodes as a regular PNG.
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("annotated thumbnail no longer decodes: %s", err)
	}
}

func TestSymlinkSharesCacheSlot(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cache := NewCacheAt(cacheDir)

	src := writeSourceImage(t, dir, 200, 200)
	link := filepath.Join(dir, "link.png")
	if err := os.Symlink(src, link); err != nil {
		t.Skipf("symlinks unavailable: %s", err)
	}

	if _, err := cache.Create(src); err != nil {
		t.Fatal(err)
	}

	if !cache.Exists(link) {
		t.Error("symlinked path missed the original's cache slot")
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("%d cache entries, expected a single shared slot", len(entries))
	}
}

func TestScale(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 1000, 500, 128, 64},
		{"portrait", 500, 1000, 64, 128},
		{"square", 640, 640, 128, 128},
		{"fits already", 100, 50, 100, 50},
		{"exact fit", 128, 128, 128, 128},
		{"extreme ratio", 10000, 10, 128, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tc.w, tc.h))
			dst := Scale(src, 128, 128)
			b := dst.Bounds()
			if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
				t.Errorf("Scale(%dx%d) = %dx%d, expected %dx%d",
					tc.w, tc.h, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
			}
		})
	}
}

func TestScaleNeverUpscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	if dst := Scale(src, 128, 128); dst != image.Image(src) {
		t.Error("image that already fits was not returned as-is")
	}
}
