package gpu

import "errors"

// ErrFramebufferIncomplete is returned by FramebufferStatus when the bound
// framebuffer cannot be rendered to.
var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")
