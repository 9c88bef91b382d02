package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rook-computer/binaryrain/internal/app"
	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/render"
	"github.com/rook-computer/binaryrain/internal/render/terminal"
	"github.com/rook-computer/binaryrain/internal/render/window"
)

const (
	envStdioLog      = "BINARYRAIN_STDIO_LOG"
	envReducedMotion = "BINARYRAIN_REDUCED_MOTION"
)

var (
	flagConfig string
	flagDebug  bool
	flagLog    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "binaryrain",
	Short:         "Binary rain hero animation with a typewriter headline",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML tuning file (default: built-in profiles)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLog, "debug-log", "./binaryrain-debug.log", "debug log path, used with --debug")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(snapshotCmd)
}

var (
	flagBackend       string
	flagProfile       string
	flagReducedMotion bool
	flagStdioLog      string
	flagFBDevice      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the animation in a window, the terminal or on the framebuffer",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagBackend, "backend", "window", "output: window|terminal|fb")
	runCmd.Flags().StringVar(&flagProfile, "profile", config.ModeAuto, "tuning profile: auto|desktop|constrained")
	runCmd.Flags().BoolVar(&flagReducedMotion, "reduced-motion", false, "prefer reduced motion (also "+envReducedMotion+")")
	runCmd.Flags().StringVar(&flagStdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also "+envStdioLog)
	runCmd.Flags().StringVar(&flagFBDevice, "fb-device", render.DefaultFBDevice, "framebuffer device for --backend fb")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Best-effort: with the console in graphics mode or the terminal taken
	// over, stdout and stderr are otherwise lost.
	if path := envFallback(flagStdioLog, envStdioLog); path != "" {
		if err := redirectStdIO(path); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	logger, closeLog := openLogger(flagDebug, flagLog)
	defer closeLog()

	renderer, err := newRenderer(flagBackend, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(*cfg, renderer)
	a.Mode = flagProfile
	a.Logger = logger
	a.Debug = flagDebug
	a.ReducedMotion = flagReducedMotion || envBool(envReducedMotion)

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func newRenderer(backend string, cfg *config.Config, logger app.Logger) (render.Renderer, error) {
	switch backend {
	case "window":
		r := window.New(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
		r.Logger = logger
		r.Debug = flagDebug
		return r, nil
	case "terminal":
		r := terminal.New()
		r.Logger = logger
		r.Debug = flagDebug
		return r, nil
	case "fb":
		r := render.NewFBRenderer()
		r.Device = flagFBDevice
		r.Logger = logger
		r.Debug = flagDebug
		return r, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want window, terminal or fb)", backend)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openLogger returns a file logger when debug is on, or a no-op logger.
func openLogger(debug bool, path string) (app.Logger, func()) {
	if !debug {
		return app.NoopLogger{}, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "debug log open error:", err)
		return app.NoopLogger{}, func() {}
	}
	logger := app.NewFileLogger(f)
	logger.Infof("main", "debug logging enabled")
	return logger, func() { _ = f.Close() }
}

func envFallback(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
