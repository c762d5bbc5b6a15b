// Package thumbs keeps a content-addressed on-disk cache of downscaled
// preview images, in the freedesktop thumbnail layout: one PNG per source
// file under <cache>/thumbnails/normal, keyed by the MD5 of the source's
// file:// URI. Staleness detection rides inside the thumbnail itself as tEXt
// metadata (source size and mtime), so no side index is needed and the
// metadata can never drift from the file it describes.
package thumbs

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	homedir "github.com/mitchellh/go-homedir"
	"gitlab.com/begraf/spur/filesystem"
)

// ThumbSize bounds both thumbnail dimensions.
const ThumbSize = 128

const (
	keyWidth    = "Thumb::Image::Width"
	keyHeight   = "Thumb::Image::Height"
	keySize     = "Thumb::Size"
	keyMTime    = "Thumb::MTime"
	keyURI      = "Thumb::URI"
	keySoftware = "Software"
)

type Cache struct {
	Dir string
}

// NewCache resolves the standard thumbnail directory:
// $XDG_CACHE_HOME/thumbnails/normal, falling back to ~/.cache.
func NewCache() (*Cache, error) {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Cache{Dir: filepath.Join(cacheHome, "thumbnails", "normal")}, nil
}

// NewCacheAt uses an explicit directory. Mostly for tests and alternate
// cache locations.
func NewCacheAt(dir string) *Cache {
	return &Cache{Dir: dir}
}

// key is the MD5 hex digest of "file://" + the canonicalized source path.
// The same source file therefore always maps to the same cache slot.
func (c *Cache) key(path string) (digest, realpath string, err error) {
	realpath, err = filesystem.Realpath(path)
	if err != nil {
		return "", "", err
	}

	sum := md5.Sum([]byte("file://" + realpath))
	return fmt.Sprintf("%x", sum), realpath, nil
}

func (c *Cache) thumbFile(digest string) string {
	return filepath.Join(c.Dir, digest+".png")
}

// Get returns the cached thumbnail for path, or false when none exists, the
// cached copy is stale (source size or mtime changed), or the cached file
// cannot be decoded.
func (c *Cache) Get(path string) (image.Image, bool) {
	digest, realpath, err := c.key(path)
	if err != nil {
		return nil, false
	}

	raw, err := os.ReadFile(c.thumbFile(digest))
	if err != nil {
		return nil, false
	}

	texts, err := readTextChunks(raw)
	if err != nil {
		return nil, false
	}

	ssize, ok1 := texts[keySize]
	smtime, ok2 := texts[keyMTime]
	if !ok1 || !ok2 {
		return nil, false
	}

	info, err := os.Stat(realpath)
	if err != nil {
		return nil, false
	}

	if strconv.FormatInt(info.Size(), 10) != ssize ||
		strconv.FormatInt(info.ModTime().Unix(), 10) != smtime {
		return nil, false
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}

	return img, true
}

func (c *Cache) Exists(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Create decodes the source image, applies its embedded orientation,
// downscales it to fit ThumbSize and writes it into the cache. The write
// goes to a pid-qualified temporary name first and is renamed into place, so
// two processes racing to create the same thumbnail never expose a
// half-written file. Any failure simply yields no cached thumbnail.
func (c *Cache) Create(path string) (image.Image, error) {
	if img, ok := c.Get(path); ok {
		return img, nil
	}

	digest, realpath, err := c.key(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(realpath)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	full, err := imaging.Open(realpath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image '%s': %w", path, err)
	}

	thumb := Scale(full, ThumbSize, ThumbSize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	bounds := full.Bounds()
	payload, err := insertTextChunks(buf.Bytes(), []textEntry{
		{keyWidth, strconv.Itoa(bounds.Dx())},
		{keyHeight, strconv.Itoa(bounds.Dy())},
		{keySize, strconv.FormatInt(info.Size(), 10)},
		{keyMTime, strconv.FormatInt(info.ModTime().Unix(), 10)},
		{keyURI, "file://" + realpath},
		{keySoftware, "spur"},
	})
	if err != nil {
		return nil, err
	}

	if err := filesystem.CreatePrivateDirectory(c.Dir); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	final := c.thumbFile(digest)
	tmp := fmt.Sprintf("%s.spur-%d", final, os.Getpid())

	if err := os.WriteFile(tmp, payload, 0600); err != nil {
		return nil, fmt.Errorf("write thumbnail: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("rename thumbnail: %w", err)
	}

	return thumb, nil
}

// Scale fits src into max_w x max_h preserving aspect ratio. It only ever
// scales down: a source that already fits is returned as-is. The single
// scale factor is the larger of the two axis ratios; dimensions floor at one
// pixel.
func Scale(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= maxW && h <= maxH {
		return src
	}

	scaleX := float64(w) / float64(maxW)
	scaleY := float64(h) / float64(maxH)
	scale := scaleX
	if scaleY > scale {
		scale = scaleY
	}

	destW := int(float64(w) / scale)
	destH := int(float64(h) / scale)
	if destW < 1 {
		destW = 1
	}
	if destH < 1 {
		destH = 1
	}

	return imaging.Resize(src, destW, destH, imaging.Linear)
}
