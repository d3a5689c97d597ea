// Package config handles sandbox configuration loading and management.
package config

// Config holds all sandbox settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`

	// File is the path the config was loaded from. Save writes back to it.
	File string `yaml:"-"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	VSync     bool   `yaml:"vsync"`
	TargetFPS int    `yaml:"target_fps"` // 0 = uncapped
}

// CameraConfig holds the initial camera placement and tuning.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	Zoom        float32    `yaml:"zoom"`
}

// OutlineStyle controls how much a selected drawable is enlarged for its outline.
// The outline scale is scale*Factor + Offset.
type OutlineStyle struct {
	Factor float32 `yaml:"factor"`
	Offset float32 `yaml:"offset"`
}

// OutlineConfig holds the outline color and per-kind enlargement.
type OutlineConfig struct {
	Color  [4]float32              `yaml:"color"`
	Styles map[string]OutlineStyle `yaml:"styles"` // keyed by entity kind name
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	ClearColor       [4]float32    `yaml:"clear_color"`
	PostEffect       string        `yaml:"post_effect"`
	Outline          OutlineConfig `yaml:"outline"`
	ShowLightMarkers bool          `yaml:"show_light_markers"`
	ShowFPS          bool          `yaml:"show_fps"`
}

// SceneConfig holds demo scene population settings.
type SceneConfig struct {
	Asteroids      AsteroidConfig `yaml:"asteroids"`
	Vegetation     bool           `yaml:"vegetation"`
	Windows        bool           `yaml:"windows"`
	Primitives     bool           `yaml:"primitives"`
	PointLightSize float32        `yaml:"point_light_size"`
}

// AsteroidConfig holds instanced asteroid field settings.
type AsteroidConfig struct {
	Count  int     `yaml:"count"`
	Radius float32 `yaml:"radius"`
	Offset float32 `yaml:"offset"`
	Seed   uint64  `yaml:"seed"`
	Model  string  `yaml:"model"`
}

// AssetsConfig holds asset locations.
type AssetsConfig struct {
	Root      string    `yaml:"root"`
	ShaderDir string    `yaml:"shader_dir"` // empty = built-in shaders
	HotReload bool      `yaml:"hot_reload"`
	Skybox    []string  `yaml:"skybox"` // +X, -X, +Y, -Y, +Z, -Z
	Models    []string  `yaml:"models"`
	Textures  TexConfig `yaml:"textures"`
}

// TexConfig names the textures used by the demo scene.
type TexConfig struct {
	ContainerDiffuse  string `yaml:"container_diffuse"`
	ContainerSpecular string `yaml:"container_specular"`
	RockDiffuse       string `yaml:"rock_diffuse"`
	RockNormal        string `yaml:"rock_normal"`
	Grass             string `yaml:"grass"`
	Window            string `yaml:"window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "GL Sandbox",
			Width:     1200,
			Height:    800,
			VSync:     true,
			TargetFPS: 0,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			Yaw:         -90,
			Pitch:       0,
			Speed:       2.5,
			Sensitivity: 0.1,
			Zoom:        45,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1.0},
			PostEffect: "none",
			Outline: OutlineConfig{
				Color: [4]float32{0.04, 0.28, 0.26, 1.0},
				Styles: map[string]OutlineStyle{
					"triangle":  {Factor: 1.03},
					"quad":      {Factor: 1.03},
					"cube":      {Factor: 1.02},
					"mesh-cube": {Factor: 1.02},
					"mesh-quad": {Factor: 1.03},
					"model":     {Factor: 1.0, Offset: 0.01},
				},
			},
			ShowLightMarkers: true,
			ShowFPS:          true,
		},
		Scene: SceneConfig{
			Asteroids: AsteroidConfig{
				Count:  1000,
				Radius: 50,
				Offset: 2.5,
				Seed:   1,
				Model:  "models/rock/rock.obj",
			},
			Vegetation:     true,
			Windows:        true,
			Primitives:     true,
			PointLightSize: 0.2,
		},
		Assets: AssetsConfig{
			Root:      "resources",
			HotReload: false,
			Skybox: []string{
				"textures/skybox/right.jpg",
				"textures/skybox/left.jpg",
				"textures/skybox/top.jpg",
				"textures/skybox/bottom.jpg",
				"textures/skybox/front.jpg",
				"textures/skybox/back.jpg",
			},
			Models: []string{
				"models/backpack/backpack.obj",
				"models/rock/rock.obj",
			},
			Textures: TexConfig{
				ContainerDiffuse:  "textures/container.png",
				ContainerSpecular: "textures/container_specular.png",
				RockDiffuse:       "textures/dry_riverbed_rock_diff.png",
				RockNormal:        "textures/dry_riverbed_rock_normal.png",
				Grass:             "textures/grass.png",
				Window:            "textures/blending_transparent_window.png",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
