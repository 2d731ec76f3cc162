// Package texture rasterizes the rotator icon and keeps the resulting
// textures in a bounded, process-wide cache shared by every transformer.
package texture

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"
)

// DefaultCapacity bounds the process-wide cache.
const DefaultCapacity = 256

// oversample renders icons larger than requested and scales them down.
const oversample = 4

// Texture is a rasterized icon.
type Texture struct {
	ID    string
	Key   Key
	SVG   string
	Image *image.RGBA

	pngOnce sync.Once
	png     []byte
	pngErr  error
}

// PNG returns the texture encoded as PNG.
func (t *Texture) PNG() ([]byte, error) {
	t.pngOnce.Do(func() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, t.Image); err != nil {
			t.pngErr = fmt.Errorf("encode texture: %w", err)
			return
		}
		t.png = buf.Bytes()
	})
	return t.png, t.pngErr
}

// Stats are cache counters.
type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
	Len       int `json:"len"`
}

// Cache holds textures keyed by style. Entries are created once and read
// many times; when capacity is positive the least recently used entry is
// evicted. A zero capacity never evicts.
type Cache struct {
	mu    sync.Mutex
	lru   *simplelru.LRU[Key, *Texture]
	byID  map[string]Key
	stats Stats
}

// NewCache creates a cache holding at most capacity textures.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = math.MaxInt
	}
	c := &Cache{byID: make(map[string]Key)}
	// only fails for a non-positive size
	c.lru, _ = simplelru.NewLRU[Key, *Texture](capacity, c.onEvict)
	return c
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = NewCache(DefaultCapacity)
	})
	return defaultCache
}

// Rotator returns the rotator icon texture for the given colors and size.
func (c *Cache) Rotator(border, arrow string, size int) (*Texture, error) {
	return c.Get(Key{Border: border, Arrow: arrow, Size: size})
}

// Get returns the texture for key, rasterizing it on first use.
func (c *Cache) Get(key Key) (*Texture, error) {
	key.Border = strings.ToLower(key.Border)
	key.Arrow = strings.ToLower(key.Arrow)

	c.mu.Lock()
	if tex, ok := c.lru.Get(key); ok {
		c.stats.Hits++
		c.mu.Unlock()
		return tex, nil
	}
	c.mu.Unlock()

	tex, err := Rasterize(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another caller may have raced us here
	if cached, ok := c.lru.Get(key); ok {
		c.stats.Hits++
		return cached, nil
	}
	c.stats.Misses++
	c.byID[tex.ID] = key
	c.lru.Add(key, tex)
	return tex, nil
}

// ByID returns a cached texture by id without affecting recency.
func (c *Cache) ByID(id string) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.lru.Peek(key)
}

// Image implements surface.Textures.
func (c *Cache) Image(id string) (image.Image, bool) {
	tex, ok := c.ByID(id)
	if !ok {
		return nil, false
	}
	return tex.Image, true
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len = c.lru.Len()
	return s
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// onEvict runs inside Add with c.mu held.
func (c *Cache) onEvict(_ Key, tex *Texture) {
	delete(c.byID, tex.ID)
	c.stats.Evictions++
}

// Rasterize renders the icon for key without caching it.
func Rasterize(key Key) (*Texture, error) {
	if key.Size <= 0 {
		return nil, fmt.Errorf("rasterize %s: size must be positive", key)
	}
	svg := RotatorIconSVG(key.Border, key.Arrow, key.Size)

	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.StrictErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse icon %s: %w", key, err)
	}

	big := key.Size * oversample
	src := image.NewRGBA(image.Rect(0, 0, big, big))
	icon.SetTarget(0, 0, float64(big), float64(big))
	scanner := rasterx.NewScannerGV(big, big, src, src.Bounds())
	icon.Draw(rasterx.NewDasher(big, big, scanner), 1)

	dst := image.NewRGBA(image.Rect(0, 0, key.Size, key.Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return &Texture{
		ID:    textureID(svg),
		Key:   key,
		SVG:   svg,
		Image: dst,
	}, nil
}

func textureID(svg string) string {
	sum := blake2b.Sum256([]byte(svg))
	return "tex_" + hex.EncodeToString(sum[:10])
}
