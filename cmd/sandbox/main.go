// Package main is the GL sandbox: a free-fly camera over a demo scene with
// stencil outlines, instancing, a skybox and post-processing.
package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/app"
	"github.com/Faultbox/glsandbox/internal/config"
	"github.com/Faultbox/glsandbox/internal/logger"
)

func init() {
	// GL and the window event loop must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== GL Sandbox ===",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("assets", cfg.Assets.Root),
		zap.String("effect", cfg.Render.PostEffect),
	)

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal("Failed to start", zap.Error(err))
	}
	a.Run()

	if err := a.Close(); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
