// Package catalog serves the still images that "layer NAME image FILE"
// instructions draw from. Images are decoded once at load and kept in
// memory; Watch reloads the directory when its contents change.
package catalog

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extensions the catalog decodes. Other files in the directory are ignored.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Catalog is a named set of decoded images, safe for concurrent use.
type Catalog struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	images map[string]image.Image
}

// New returns an empty in-memory catalog.
func New() *Catalog {
	return &Catalog{logger: slog.Default(), images: make(map[string]image.Image)}
}

// Open loads every decodable image in dir. Files that fail to decode are
// logged and skipped.
func Open(dir string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{dir: dir, logger: logger, images: make(map[string]image.Image)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir is the directory the catalog was opened on, or "" for New.
func (c *Catalog) Dir() string { return c.dir }

// Reload re-reads the directory and swaps the image set in one step.
func (c *Catalog) Reload() error {
	if c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", c.dir, err)
	}

	images := make(map[string]image.Image, len(entries))
	for _, e := range entries {
		if e.IsDir() || !Decodable(e.Name()) {
			continue
		}
		img, err := decodeFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			c.logger.Warn("skipping catalog image", "file", e.Name(), "error", err)
			continue
		}
		images[e.Name()] = normalize(img)
	}

	c.mu.Lock()
	c.images = images
	c.mu.Unlock()
	c.logger.Debug("catalog loaded", "dir", c.dir, "images", len(images))
	return nil
}

// normalize converts img to an origin-anchored *image.NRGBA, so layers
// built from it each frame copy rows instead of converting pixels.
func normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(out, image.Point{}, img, b, xdraw.Src, nil)
	return out
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// Decodable reports whether name has one of the catalog's extensions.
func Decodable(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// Image returns the image stored under name, as an origin-anchored
// *image.NRGBA.
func (c *Catalog) Image(name string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[name]
	return img, ok
}

// Exists reports whether name is in the catalog.
func (c *Catalog) Exists(name string) bool {
	_, ok := c.Image(name)
	return ok
}

// Put stores img under name, replacing any previous image.
func (c *Catalog) Put(name string, img image.Image) {
	n := normalize(img)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[name] = n
}

// Names lists the catalog in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.images))
	for name := range c.images {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
