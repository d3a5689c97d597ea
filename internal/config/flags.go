package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
	flagAssets    = flag.String("assets", "", "Asset root directory")
	flagShaders   = flag.String("shaders", "", "Load shaders from this directory instead of the built-in set")
	flagEffect    = flag.String("effect", "", "Post-processing effect (none, inversion, grayscale, sharpen, blur, edge)")
	flagAsteroids = flag.Int("asteroids", -1, "Number of instanced asteroids")
	flagHotReload = flag.Bool("hot-reload", false, "Recompile shaders when their files change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.ShowFPS = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagAssets != "" {
		cfg.Assets.Root = *flagAssets
	}
	if *flagShaders != "" {
		cfg.Assets.ShaderDir = *flagShaders
	}
	if *flagEffect != "" {
		cfg.Render.PostEffect = *flagEffect
	}
	if *flagAsteroids >= 0 {
		cfg.Scene.Asteroids.Count = *flagAsteroids
	}
	if *flagHotReload {
		cfg.Assets.HotReload = true
	}
}
