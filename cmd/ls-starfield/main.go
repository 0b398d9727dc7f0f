// Command ls-starfield drives a twinkling starfield with comets on an
// addressable LED strip and previews it in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/randsrc"
	"github.com/litescript/ls-starfield/internal/scheduler"
	"github.com/litescript/ls-starfield/internal/starfield"
	"github.com/litescript/ls-starfield/internal/state"
	"github.com/litescript/ls-starfield/internal/strip"
	"github.com/litescript/ls-starfield/internal/ui"
	"github.com/litescript/ls-starfield/internal/version"
)

// CLI flags
var (
	configPath   string
	logLevel     string
	logFile      string
	seed         uint64
	numLEDs      int
	colorOrder   string
	devicePath   string
	headless     bool
	maxFrames    uint64
	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:   "ls-starfield",
	Short: "Twinkling starfield and comets for addressable LED strips",
	Long: `ls-starfield animates a dim, slowly twinkling field of stars and now and
then sends a comet with a fading trail across the strip.

Frames are written to --device as raw colour bytes (one triple per element,
in --color-order). On a terminal the strip is previewed live; use --headless
to run without the preview.`,
	SilenceUsage: true,
	RunE:         run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ls-starfield v%s\n", version.Version)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&logFile, "log-file", "", "Write logs to file (the preview discards them otherwise)")
	f.Uint64Var(&seed, "seed", 0, "Random seed (0 = seed from the clock)")
	f.IntVarP(&numLEDs, "leds", "n", 0, "Number of strip elements (overrides config)")
	f.StringVar(&colorOrder, "color-order", "", "Device byte order: RGB, RBG, GRB, GBR, BRG or BGR (overrides config)")
	f.StringVarP(&devicePath, "device", "d", "", "Write frames to this device or file (- for stdout)")
	f.BoolVar(&headless, "headless", false, "Run without the terminal preview")
	f.Uint64Var(&maxFrames, "frames", 0, "Stop after this many frames (0 = run until interrupted)")
	f.StringVar(&snapshotPath, "snapshot-path", "", "Export a JSON snapshot on exit (- for stdout)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The preview needs the terminal to itself
	preview := !headless && devicePath != "-" && term.IsTerminal(int(os.Stdout.Fd()))

	logger, closeLog, err := newLogger(preview)
	if err != nil {
		return err
	}
	defer closeLog()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Interrupted, stopping after the current frame")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initialize components
	stateMgr := state.NewManager(state.DefaultConfig())

	driver, closeDevice, err := newDriver(cfg, stateMgr)
	if err != nil {
		return err
	}
	defer closeDevice()

	src := randsrc.New(seed)
	field := starfield.New(cfg, src)
	field.Init()

	sched := scheduler.New(cfg, field, driver, src,
		scheduler.WithObserver(stateMgr),
		scheduler.WithLogger(logger.With("component", "scheduler")),
		scheduler.WithMaxTicks(maxFrames))

	logger.Debug("Config: %d elements, frame delay %v, comet chance %.2f, order %s",
		cfg.NumLEDs, cfg.FrameDelay, cfg.CometBaseChance, cfg.ColorOrder)

	if preview {
		err = runPreview(ctx, sched, stateMgr)
	} else {
		err = sched.Run(ctx)
	}

	snap := stateMgr.Snapshot()
	logger.Info("Stopped after %d frames, %d comets", snap.Ticks, snap.Comets)

	if snapshotPath != "" {
		if exportErr := exportSnapshot(snap); exportErr != nil {
			logger.Error("Snapshot export failed: %v", exportErr)
			if err == nil {
				err = exportErr
			}
		}
	}
	return err
}

// loadConfig reads --config over the defaults and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("leds") {
		cfg.NumLEDs = numLEDs
	}
	if cmd.Flags().Changed("color-order") {
		order, err := strip.ParseColorOrder(colorOrder)
		if err != nil {
			return config.Config{}, err
		}
		cfg.ColorOrder = order
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger sets up logging. With the preview running, logs go to --log-file
// or nowhere.
func newLogger(preview bool) (*logging.Logger, func(), error) {
	level := logging.ParseLevel(logLevel)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger := logging.New(level)
		logger.SetOutput(f)
		return logger, func() {
			_ = logger.Sync()
			_ = f.Close()
		}, nil
	}

	if preview {
		return logging.Discard(), func() {}, nil
	}

	logger := logging.New(level)
	return logger, func() { _ = logger.Sync() }, nil
}

// newDriver builds the strip driver: an in-memory buffer feeding the state
// manager, plus the byte stream when --device is set.
func newDriver(cfg config.Config, stateMgr *state.Manager) (strip.Driver, func(), error) {
	buf := strip.NewBuffer(cfg.NumLEDs)
	buf.OnShow = stateMgr.FrameShown

	if devicePath == "" {
		return buf, func() {}, nil
	}

	var (
		w       io.Writer
		closeFn = func() {}
	)
	if devicePath == "-" {
		w = os.Stdout
	} else {
		f, err := os.OpenFile(devicePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open device: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	return strip.Multi{buf, strip.NewStream(w, cfg.NumLEDs, cfg.ColorOrder)}, closeFn, nil
}

// runPreview runs the animation loop and the terminal preview together.
// Whichever stops first stops the other.
func runPreview(ctx context.Context, sched *scheduler.Scheduler, stateMgr *state.Manager) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.New(stateMgr), tea.WithAltScreen())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := sched.Run(gctx)
		if err != nil {
			p.Send(ui.ErrorMsg{Error: err})
		}
		return err
	})

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run preview: %w", err)
		}
		return nil
	})

	go func() {
		<-gctx.Done()
		p.Quit()
	}()

	return g.Wait()
}

func exportSnapshot(snap state.Snapshot) error {
	export := state.ExportSnapshot(snap, time.Now())

	if snapshotPath == "-" {
		return export.WriteJSON(os.Stdout)
	}

	f, err := os.Create(snapshotPath)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
