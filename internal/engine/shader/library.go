package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/engine/gpu"
	"github.com/Faultbox/glsandbox/internal/logger"
)

//go:embed shaders/*.vert shaders/*.frag
var embedded embed.FS

// Builtin returns the shader sources compiled into the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(embedded, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// Program names.
const (
	Main     = "main"
	Outline  = "outline"
	Unlit    = "unlit"
	Instance = "instance"
	Skybox   = "skybox"
	Screen   = "screen"
)

// Source names the vertex and fragment files of a program.
type Source struct {
	Vertex   string
	Fragment string
}

// Sources lists every program the renderer needs.
var Sources = map[string]Source{
	Main:     {Vertex: "default.vert", Fragment: "default.frag"},
	Outline:  {Vertex: "default.vert", Fragment: "outline.frag"},
	Unlit:    {Vertex: "default.vert", Fragment: "unlit.frag"},
	Instance: {Vertex: "instance.vert", Fragment: "default.frag"},
	Skybox:   {Vertex: "skybox.vert", Fragment: "skybox.frag"},
	Screen:   {Vertex: "screen.vert", Fragment: "screen.frag"},
}

// Library owns the compiled programs.
type Library struct {
	dev      gpu.Device
	files    fs.FS
	programs map[string]*Program
	log      *zap.Logger
}

// NewLibrary creates a library reading sources from files.
func NewLibrary(dev gpu.Device, files fs.FS) *Library {
	return &Library{
		dev:      dev,
		files:    files,
		programs: make(map[string]*Program),
		log:      logger.Named("shader"),
	}
}

// Load compiles every program in Sources. All failures are reported.
func (l *Library) Load() error {
	var errs error
	for _, name := range names() {
		src := Sources[name]
		vs, frag, err := l.read(src)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("program %s: %w", name, err))
			continue
		}
		p, err := Compile(l.dev, name, vs, frag)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		l.programs[name] = p
		l.log.Debug("Compiled program",
			zap.String("name", name),
			zap.Uint32("id", p.ID),
		)
	}
	return errs
}

// Get returns a compiled program, or nil if it was never loaded.
func (l *Library) Get(name string) *Program {
	return l.programs[name]
}

// Reload recompiles every program that uses file. A program that fails to
// compile keeps its previous version. It returns the programs that changed.
func (l *Library) Reload(file string) ([]string, error) {
	file = path.Base(file)

	var (
		reloaded []string
		errs     error
	)
	for _, name := range names() {
		src := Sources[name]
		if src.Vertex != file && src.Fragment != file {
			continue
		}
		p := l.programs[name]
		if p == nil {
			continue
		}
		vs, frag, err := l.read(src)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("program %s: %w", name, err))
			continue
		}
		id, err := l.dev.CompileProgram(vs, frag)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("program %s: %w", name, err))
			continue
		}
		p.swap(id)
		reloaded = append(reloaded, name)
	}

	if len(reloaded) > 0 {
		l.log.Info("Reloaded programs", zap.String("file", file), zap.Strings("programs", reloaded))
	}
	if errs != nil {
		l.log.Warn("Shader reload failed", zap.String("file", file), zap.Error(errs))
	}
	return reloaded, errs
}

// Destroy deletes all programs.
func (l *Library) Destroy() {
	for _, p := range l.programs {
		p.Destroy()
	}
	l.programs = make(map[string]*Program)
}

func (l *Library) read(src Source) (string, string, error) {
	vs, err := fs.ReadFile(l.files, src.Vertex)
	if err != nil {
		return "", "", err
	}
	frag, err := fs.ReadFile(l.files, src.Fragment)
	if err != nil {
		return "", "", err
	}
	return string(vs), string(frag), nil
}

// names returns program names in a stable order.
func names() []string {
	out := make([]string, 0, len(Sources))
	for name := range Sources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
