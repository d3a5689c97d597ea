// Package app wires the window, renderer, scene and inspector into the
// sandbox frame loop.
package app

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/assets"
	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/engine/camera"
	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/engine/input"
	"github.com/Faultbox/glsandbox/internal/engine/model"
	"github.com/Faultbox/glsandbox/internal/engine/renderer"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
	"github.com/Faultbox/glsandbox/internal/engine/shader"
	"github.com/Faultbox/glsandbox/internal/engine/texture"
	"github.com/Faultbox/glsandbox/internal/engine/ui"
	"github.com/Faultbox/glsandbox/internal/logger"
)

// importDistance is how far in front of the camera imported models appear.
const importDistance = 3

// window is the part of the platform backend the frame loop drives.
type window interface {
	input.Cursor
	Poll() input.FrameInput
	RequestClose()
}

// platform owns the window, the GL context and the event loop.
type platform interface {
	window
	Run(loop func())
	SetBeforeRenderHook(hook func())
	SetBeforeDestroyHook(hook func())
	Destroy()
}

// App is the sandbox application.
type App struct {
	cfg *config.Config

	backend  platform
	win      window
	dev      gpu.Device
	assets   *assets.Manager
	textures *texture.Cache
	programs *shader.Library
	watcher  *shader.Watcher
	renderer *renderer.Renderer

	camera *camera.Camera
	scene  *scene.Scene
	mapper *input.Mapper
	frame  renderer.FrameState

	imports     chan string
	importRoots map[string]string

	log *zap.Logger
}

// New creates the window and GL context, compiles the programs and builds
// the demo scene. Shader compile errors are fatal; missing assets are not.
// On failure everything created so far, the window included, is released.
func New(cfg *config.Config) (_ *App, err error) {
	a := &App{
		cfg:         cfg,
		mapper:      input.NewMapper(),
		imports:     make(chan string, 1),
		importRoots: make(map[string]string),
		log:         logger.Named("app"),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	b, err := ui.NewBackend(cfg.Window, cfg.Render.ClearColor)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	a.backend = b
	a.win = b

	gl, err := gpu.NewGL()
	if err != nil {
		return nil, err
	}
	a.dev = gl
	a.log.Info("OpenGL initialized",
		zap.String("version", gl.Version),
		zap.String("renderer", gl.Renderer),
	)
	b.SetWindowTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, gl.Renderer))

	a.assets = assets.NewManager()
	if err := a.assets.AddDir(cfg.Assets.Root); err != nil {
		a.log.Warn("Asset root unavailable, textured entities will be skipped", zap.Error(err))
	}
	a.textures = texture.NewCache(a.dev, a.assets)

	a.programs = shader.NewLibrary(a.dev, shaderFiles(cfg.Assets.ShaderDir))
	if err := a.programs.Load(); err != nil {
		return nil, fmt.Errorf("compiling shaders: %w", err)
	}
	a.watchShaders()

	settings, err := renderer.SettingsFrom(cfg)
	if err != nil {
		return nil, err
	}
	a.renderer = renderer.New(a.dev, a.programs, settings, int32(cfg.Window.Width), int32(cfg.Window.Height))

	a.camera = newCamera(cfg.Camera)

	var skipped error
	a.scene, skipped = Populate(a.dev, a.textures, cfg)
	if skipped != nil {
		a.log.Warn("Some scene assets were skipped",
			zap.Int("count", len(multierr.Errors(skipped))),
			zap.Error(skipped),
		)
	}

	a.frame = renderer.FrameState{
		Camera: a.camera,
		Scene:  a.scene,
		Width:  int32(cfg.Window.Width),
		Height: int32(cfg.Window.Height),
	}
	a.renderer.BroadcastLights(a.frame)

	return a, nil
}

// shaderFiles returns the directory sources, or the built-in ones when dir
// is empty.
func shaderFiles(dir string) fs.FS {
	if dir == "" {
		return shader.Builtin()
	}
	return os.DirFS(dir)
}

func (a *App) watchShaders() {
	if !a.cfg.Assets.HotReload {
		return
	}
	if a.cfg.Assets.ShaderDir == "" {
		a.log.Warn("Shader hot reload needs assets.shader_dir, built-in shaders are not watched")
		return
	}
	w, err := shader.Watch(a.cfg.Assets.ShaderDir)
	if err != nil {
		a.log.Warn("Shader hot reload disabled", zap.Error(err))
		return
	}
	a.watcher = w
}

func newCamera(cfg config.CameraConfig) *camera.Camera {
	pos := mgl32.Vec3{cfg.Position[0], cfg.Position[1], cfg.Position[2]}
	c := camera.New(pos, mgl32.Vec3{0, 1, 0}, cfg.Yaw, cfg.Pitch)
	if cfg.Speed > 0 {
		c.MovementSpeed = cfg.Speed
	}
	if cfg.Sensitivity > 0 {
		c.MouseSensitivity = cfg.Sensitivity
	}
	if cfg.Zoom > 0 {
		c.Zoom = cfg.Zoom
	}
	return c
}

// Run runs the frame loop until the window closes.
func (a *App) Run() {
	a.log.Info("Entering frame loop")
	a.backend.SetBeforeRenderHook(a.render)
	a.backend.SetBeforeDestroyHook(a.releaseGPU)
	a.backend.Run(a.loop)
	a.log.Info("Frame loop finished")
}

// loop handles input and builds the GUI for one frame. The scene is drawn
// afterwards by render, so every mutation lands before rendering.
func (a *App) loop() {
	a.update(a.win.Poll())

	act := ui.DrawInspector(a.scene, a.camera, &a.renderer.Settings)
	if act.ImportModel {
		ui.OpenModelDialog(a.imports)
	}
	if act.SaveSettings {
		if err := a.saveSettings(); err != nil {
			a.log.Warn("Saving settings failed", zap.Error(err))
		}
	}
	if a.cfg.Render.ShowFPS {
		ui.DrawFPSOverlay()
	}
}

// update applies one frame of input and records the frame to render.
func (a *App) update(in input.FrameInput) {
	res := a.mapper.Apply(in, a.camera, a.win)
	if res.Quit {
		a.log.Info("Quit requested")
		a.win.RequestClose()
	}

	a.reloadShaders()
	a.importPending()

	a.frame = renderer.FrameState{
		Camera: a.camera,
		Scene:  a.scene,
		Width:  in.FramebufferSize[0],
		Height: in.FramebufferSize[1],
	}
}

// reloadShaders recompiles programs for every pending file change. Failed
// programs keep their previous version.
func (a *App) reloadShaders() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case file := <-a.watcher.Changes():
			// Library.Reload logs its own failures.
			_, _ = a.programs.Reload(file)
		default:
			return
		}
	}
}

func (a *App) importPending() {
	select {
	case file := <-a.imports:
		if err := a.importModel(file); err != nil {
			a.log.Warn("Model import failed", zap.String("file", file), zap.Error(err))
		}
	default:
	}
}

// importModel loads an OBJ file from anywhere on disk and places it in
// front of the camera. Its directory is mounted under its own prefix so
// material libraries and textures next to it resolve without colliding
// with same-named files of other imports.
func (a *App) importModel(file string) error {
	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	prefix, ok := a.importRoots[dir]
	if !ok {
		prefix = fmt.Sprintf("imports/%d", len(a.importRoots)+1)
		if err := a.assets.MountDir(prefix, dir); err != nil {
			return err
		}
		a.importRoots[dir] = prefix
	}
	asset := path.Join(prefix, name)
	a.assets.Invalidate(asset)

	m, err := model.Load(a.dev, asset, a.textures)
	if err != nil {
		return err
	}

	e := scene.NewEntity(modelName(name), scene.Model, scene.ModelDrawable{Model: m})
	e.Position = a.camera.Position.Add(a.camera.Front.Mul(importDistance))
	a.scene.AddEntity(e)

	a.log.Info("Imported model",
		zap.String("file", file),
		zap.Int("meshes", len(m.Meshes)),
		zap.Stringer("id", e.ID),
	)
	return nil
}

// saveSettings persists the inspector's render settings and the current
// camera pose.
func (a *App) saveSettings() error {
	a.renderer.Settings.ApplyTo(a.cfg)

	c := a.camera
	a.cfg.Camera.Position = [3]float32{c.Position[0], c.Position[1], c.Position[2]}
	a.cfg.Camera.Yaw = c.Yaw
	a.cfg.Camera.Pitch = c.Pitch
	a.cfg.Camera.Speed = c.MovementSpeed
	a.cfg.Camera.Sensitivity = c.MouseSensitivity
	a.cfg.Camera.Zoom = c.Zoom

	if err := a.cfg.Save(); err != nil {
		return err
	}
	a.log.Info("Settings saved", zap.String("path", a.cfg.Path()))
	return nil
}

// render draws the recorded frame. A minimized window renders nothing.
func (a *App) render() {
	if a.frame.Minimized() {
		return
	}
	a.renderer.Render(a.frame)
	a.renderer.Resolve(a.frame)
}

// Close releases every GPU resource, stops the shader watcher and destroys
// the window. It is safe to call more than once.
func (a *App) Close() error {
	var errs error

	a.releaseGPU()
	if a.watcher != nil {
		errs = multierr.Append(errs, a.watcher.Close())
		a.watcher = nil
	}
	if a.assets != nil {
		a.assets.Close()
		a.assets = nil
	}
	if a.backend != nil {
		a.backend.Destroy()
		a.backend = nil
		a.win = nil
	}

	if errs != nil {
		a.log.Warn("Shutdown finished with errors", zap.Error(errs))
	} else {
		a.log.Info("Shutdown complete")
	}
	return errs
}

// releaseGPU deletes every GPU object. It must run while the GL context is
// current, so Run calls it from the backend before the context goes away.
func (a *App) releaseGPU() {
	if a.scene != nil {
		a.scene.Destroy(a.dev)
		a.scene = nil
	}
	if a.renderer != nil {
		a.renderer.Destroy()
		a.renderer = nil
	}
	if a.programs != nil {
		a.programs.Destroy()
		a.programs = nil
	}
	if a.textures != nil {
		a.textures.Destroy()
		a.textures = nil
	}
}
