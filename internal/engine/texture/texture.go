package texture

import (
	"fmt"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
)

// CubeFaces is the number of cubemap faces, ordered +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

// Texture is a GPU texture object.
type Texture struct {
	ID       uint32
	Target   gpu.TextureTarget
	Path     string
	Width    int
	Height   int
	Channels int
}

// Format maps a channel count to a pixel format.
func Format(channels int) (gpu.PixelFormat, error) {
	switch channels {
	case 1:
		return gpu.Red, nil
	case 3:
		return gpu.RGB, nil
	case 4:
		return gpu.RGBA, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
}

// Params returns the sampling parameters for a 2D texture: trilinear
// minification, linear magnification, and edge clamping only when the
// texture has alpha.
func Params(channels int) gpu.TextureParams {
	p := gpu.TextureParams{
		MinFilter: gpu.LinearMipmapLinear,
		MagFilter: gpu.Linear,
		Wrap:      gpu.Repeat,
	}
	if channels == 4 {
		p.Wrap = gpu.ClampToEdge
	}
	return p
}

// Upload creates a mipmapped 2D texture from img.
func Upload(dev gpu.Device, img *Image) (*Texture, error) {
	format, err := Format(img.Channels)
	if err != nil {
		return nil, err
	}

	id := dev.CreateTexture()
	dev.BindTexture(gpu.Texture2D, id)
	dev.TexImage2D(gpu.Texture2D, 0, int32(img.Width), int32(img.Height), format, img.Pix)
	dev.GenerateMipmap(gpu.Texture2D)
	dev.TexParameters(gpu.Texture2D, Params(img.Channels))
	dev.BindTexture(gpu.Texture2D, 0)

	return &Texture{
		ID:       id,
		Target:   gpu.Texture2D,
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
	}, nil
}

// UploadCubemap creates a cubemap from six faces.
func UploadCubemap(dev gpu.Device, faces []*Image) (*Texture, error) {
	if len(faces) != CubeFaces {
		return nil, fmt.Errorf("cubemap needs %d faces, got %d", CubeFaces, len(faces))
	}
	formats := make([]gpu.PixelFormat, CubeFaces)
	for i, f := range faces {
		format, err := Format(f.Channels)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		formats[i] = format
	}

	id := dev.CreateTexture()
	dev.BindTexture(gpu.TextureCubeMap, id)
	for i, f := range faces {
		dev.TexImage2D(gpu.TextureCubeMap, i, int32(f.Width), int32(f.Height), formats[i], f.Pix)
	}
	dev.TexParameters(gpu.TextureCubeMap, gpu.TextureParams{
		MinFilter: gpu.Linear,
		MagFilter: gpu.Linear,
		Wrap:      gpu.ClampToEdge,
	})
	dev.BindTexture(gpu.TextureCubeMap, 0)

	return &Texture{
		ID:       id,
		Target:   gpu.TextureCubeMap,
		Width:    faces[0].Width,
		Height:   faces[0].Height,
		Channels: faces[0].Channels,
	}, nil
}

// HasAlpha reports whether the texture was uploaded with an alpha channel.
func (t *Texture) HasAlpha() bool {
	return t.Channels == 4
}

// Bind binds the texture to a texture unit.
func (t *Texture) Bind(dev gpu.Device, unit uint32) {
	dev.ActiveTexture(unit)
	dev.BindTexture(t.Target, t.ID)
}

// Destroy deletes the GPU texture.
func (t *Texture) Destroy(dev gpu.Device) {
	if t.ID != 0 {
		dev.DeleteTexture(t.ID)
		t.ID = 0
	}
}
