package config

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// PostEffects lists the accepted render.post_effect values.
var PostEffects = []string{"none", "inversion", "grayscale", "sharpen", "blur", "edge"}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Camera.Zoom < 1 || c.Camera.Zoom > 45 {
		err = multierr.Append(err, fmt.Errorf("camera zoom %.1f outside [1, 45]", c.Camera.Zoom))
	}
	if c.Camera.Pitch < -89 || c.Camera.Pitch > 89 {
		err = multierr.Append(err, fmt.Errorf("camera pitch %.1f outside [-89, 89]", c.Camera.Pitch))
	}
	if c.Camera.Sensitivity <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera sensitivity must be positive"))
	}
	if !slices.Contains(PostEffects, c.Render.PostEffect) {
		err = multierr.Append(err, fmt.Errorf("unknown post effect %q", c.Render.PostEffect))
	}
	for kind, style := range c.Render.Outline.Styles {
		if style.Factor <= 0 {
			err = multierr.Append(err, fmt.Errorf("outline style %q: factor must be positive", kind))
		}
	}
	if c.Scene.Asteroids.Count < 0 {
		err = multierr.Append(err, fmt.Errorf("asteroid count must not be negative"))
	}
	if n := len(c.Assets.Skybox); n != 0 && n != 6 {
		err = multierr.Append(err, fmt.Errorf("skybox needs 6 faces, got %d", n))
	}

	return err
}
