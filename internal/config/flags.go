package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMono       = flag.Bool("mono", false, "Render a single view instead of a stereo pair")
	flagWarp       = flag.Bool("warp", false, "Apply the HMD lens warp")
	flagElement    = flag.String("element", "", "Element: compositor, pointcloud or warp")
	flagCamera     = flag.String("camera", "", "Camera: hmd, arcball, wasd or plain")
	flagDriver     = flag.String("hmd", "", "HMD driver name")
	flagImage      = flag.String("image", "", "Equirectangular image to show")
	flagSource     = flag.String("source", "", "Source: image, pattern or mandelbrot")
	flagShaders    = flag.String("shaders", "", "Directory overriding the bundled shaders, watched for changes")
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
		cfg.Scene.Axes = true
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMono {
		cfg.Render.Mode = "mono"
	}
	if *flagWarp {
		cfg.Render.Warp = true
	}
	if *flagElement != "" {
		cfg.Scene.Element = *flagElement
	}
	if *flagCamera != "" {
		cfg.Camera.Type = *flagCamera
	}
	if *flagDriver != "" {
		cfg.HMD.Driver = *flagDriver
	}
	if *flagImage != "" {
		cfg.Source.Type = "image"
		cfg.Source.Path = *flagImage
	}
	if *flagSource != "" {
		cfg.Source.Type = *flagSource
	}
	if *flagShaders != "" {
		cfg.Shaders.Dir = *flagShaders
		cfg.Shaders.HotReload = true
	}
}
