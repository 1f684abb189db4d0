// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	HMD     HMDConfig     `yaml:"hmd"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Source  SourceConfig  `yaml:"source"`
	Shaders ShaderConfig  `yaml:"shaders"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// RenderConfig holds stereo rendering settings.
type RenderConfig struct {
	Mode string `yaml:"mode"` // stereo or mono
	// Eye size used when no HMD is open.
	EyeWidth   int        `yaml:"eye_width"`
	EyeHeight  int        `yaml:"eye_height"`
	ClearColor [4]float32 `yaml:"clear_color"`
	// Warp chains the lens distortion pass behind the compositor.
	Warp bool `yaml:"warp"`
}

// HMDConfig holds head mounted display settings.
type HMDConfig struct {
	Driver        string  `yaml:"driver"`
	EyeSeparation float32 `yaml:"eye_separation"`
	IdleYaw       float32 `yaml:"idle_yaw"` // radians per update, dummy driver only
}

// CameraConfig selects the camera and tunes the arcball.
type CameraConfig struct {
	Type    string        `yaml:"type"` // hmd, arcball, wasd or plain
	FOV     float32       `yaml:"fov"`
	Arcball ArcballConfig `yaml:"arcball"`
}

// ArcballConfig holds the orbit parameters of the arcball camera.
type ArcballConfig struct {
	Theta          float32 `yaml:"theta"`
	Phi            float32 `yaml:"phi"`
	CenterDistance float32 `yaml:"center_distance"`
	ScrollSpeed    float32 `yaml:"scroll_speed"`
	RotationSpeed  float32 `yaml:"rotation_speed"`
}

// SceneConfig selects the element and its geometry.
type SceneConfig struct {
	Element      string  `yaml:"element"` // compositor, pointcloud or warp
	SphereRadius float32 `yaml:"sphere_radius"`
	SphereStacks int     `yaml:"sphere_stacks"`
	SphereSlices int     `yaml:"sphere_slices"`
	Axes         bool    `yaml:"axes"`
	MeshPath     string  `yaml:"mesh_path"` // glTF file replacing the sphere
}

// SourceConfig selects the input frames.
type SourceConfig struct {
	Type   string `yaml:"type"` // image, pattern or mandelbrot
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ShaderConfig holds shader loading settings.
type ShaderConfig struct {
	Dir       string `yaml:"dir"` // overrides the bundled sources
	HotReload bool   `yaml:"hot_reload"`
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
			Title:  "midgard-vr",
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Render: RenderConfig{
			Mode:       "stereo",
			EyeWidth:   960,
			EyeHeight:  1080,
			ClearColor: [4]float32{0, 0, 0, 1},
		},
		HMD: HMDConfig{
			Driver:        "dummy",
			EyeSeparation: 0.65,
			IdleYaw:       0.002,
		},
		Camera: CameraConfig{
			Type: "hmd",
			FOV:  90,
			Arcball: ArcballConfig{
				Theta:          5,
				Phi:            -5,
				CenterDistance: 2.5,
				ScrollSpeed:    0.05,
				RotationSpeed:  0.002,
			},
		},
		Scene: SceneConfig{
			Element:      "compositor",
			SphereRadius: 10,
			SphereStacks: 20,
			SphereSlices: 20,
		},
		Source: SourceConfig{
			Type:   "pattern",
			Width:  2048,
			Height: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
