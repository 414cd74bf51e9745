package imaging

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache keeps decoded sample images keyed by path, so repeated
// measurement passes over the same image do not hit the disk.
//
// ImageCache is safe for concurrent use. Entries stay in memory until Evict
// or Clear is called. The path string is used as given; a relative and an
// absolute path to one file are separate entries.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cachedImage
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: map[string]cachedImage{}}
}

func (c *ImageCache) lookup(path string) (cachedImage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	return e, ok
}

func (c *ImageCache) get(path string) (cachedImage, error) {
	if e, ok := c.lookup(path); ok {
		return e, nil
	}

	e, err := decodeFile(path)
	if err != nil {
		return cachedImage{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have decoded the same file meanwhile; keep the
	// first entry so callers share one image.
	if prev, ok := c.entries[path]; ok {
		return prev, nil
	}
	c.entries[path] = e
	return e, nil
}

func decodeFile(path string) (cachedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, pkgerrors.Wrapf(err, "failed to open image %s", path)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, pkgerrors.Wrapf(err, "failed to decode image %s", path)
	}
	return cachedImage{img: img, format: format}, nil
}

// Load returns the PNG, JPEG or GIF image at path, decoding it on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.get(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Dimensions describes an image file.
type Dimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Dimensions returns the size and format of the image at path, loading it
// into the cache if needed.
func (c *ImageCache) Dimensions(path string) (*Dimensions, error) {
	e, err := c.get(path)
	if err != nil {
		return nil, err
	}
	b := e.img.Bounds()
	return &Dimensions{Width: b.Dx(), Height: b.Dy(), Format: e.format}, nil
}
