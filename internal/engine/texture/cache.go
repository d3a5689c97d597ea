package texture

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/assets"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/logger"
)

// Cache uploads each texture path once and owns the resulting textures.
type Cache struct {
	dev      gpu.Device
	assets   *assets.Manager
	textures map[string]*Texture
	order    []string
	log      *zap.Logger
}

// NewCache creates a texture cache reading files through am.
func NewCache(dev gpu.Device, am *assets.Manager) *Cache {
	return &Cache{
		dev:      dev,
		assets:   am,
		textures: make(map[string]*Texture),
		log:      logger.Named("assets"),
	}
}

// Assets returns the manager the cache reads from.
func (c *Cache) Assets() *assets.Manager {
	return c.assets
}

// Device returns the device textures are uploaded to.
func (c *Cache) Device() gpu.Device {
	return c.dev
}

// Get returns the texture for path, uploading it on first use.
// Failed loads are not cached.
func (c *Cache) Get(path string) (*Texture, error) {
	key := assets.Clean(path)
	if t, ok := c.textures[key]; ok {
		return t, nil
	}

	img, err := c.image(key, true)
	if err != nil {
		return nil, err
	}
	t, err := Upload(c.dev, img)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", key, err)
	}
	t.Path = key
	c.put(key, t)

	c.log.Debug("Loaded texture",
		zap.String("path", key),
		zap.Int("width", t.Width),
		zap.Int("height", t.Height),
		zap.Int("channels", t.Channels),
	)
	return t, nil
}

// Cubemap returns the cubemap built from six face paths. Every failing face
// is reported.
func (c *Cache) Cubemap(faces []string) (*Texture, error) {
	if len(faces) != CubeFaces {
		return nil, fmt.Errorf("cubemap needs %d faces, got %d", CubeFaces, len(faces))
	}

	key := "cubemap:"
	for _, f := range faces {
		key += assets.Clean(f) + ";"
	}
	if t, ok := c.textures[key]; ok {
		return t, nil
	}

	var (
		imgs = make([]*Image, CubeFaces)
		errs error
	)
	for i, f := range faces {
		img, err := c.image(assets.Clean(f), false)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		imgs[i] = img
	}
	if errs != nil {
		return nil, errs
	}

	t, err := UploadCubemap(c.dev, imgs)
	if err != nil {
		return nil, err
	}
	t.Path = key
	c.put(key, t)
	return t, nil
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	return len(c.textures)
}

// Destroy deletes every cached texture.
func (c *Cache) Destroy() {
	for _, key := range c.order {
		c.textures[key].Destroy(c.dev)
	}
	c.textures = make(map[string]*Texture)
	c.order = nil
}

func (c *Cache) image(path string, flip bool) (*Image, error) {
	data, err := c.assets.Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data, flip)
}

func (c *Cache) put(key string, t *Texture) {
	c.textures[key] = t
	c.order = append(c.order, key)
}
