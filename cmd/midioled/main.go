// Command midioled shows live MIDI controller state on a small monochrome
// panel: the last channel/controller/value, the notes under the fingers,
// the chord they form and, after a hot-plug, the connected devices.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/midihub/midioled/internal/midiport"
	"github.com/midihub/midioled/internal/monitor"
	"github.com/midihub/midioled/internal/oled"
	"github.com/midihub/midioled/internal/preview"
)

// -------------------- Logger --------------------

// logger is the command-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger, hands it to every internal
// package and calls slog.SetDefault so the stdlib log package routes through
// the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
	monitor.SetLogger(logger)
	oled.SetLogger(logger)
	midiport.SetLogger(logger)
}

// -------------------- Main --------------------

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	var (
		opts    options
		flagCfg = monitor.DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:   "midioled",
		Short: "Show live MIDI controller state on a 128x64 OLED panel.",
		Long: `midioled listens to every connected MIDI controller and keeps a small ` +
			`monochrome panel up to date with the last control change, the held and ` +
			`latched notes, the chord they form and, after a hot-plug, the device list.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), flagCfg, &opts)
			if err != nil {
				return err
			}
			initLogger(opts.debug)
			return run(cfg, opts)
		},
	}
	bindFlags(cmd.Flags(), &flagCfg, &opts)
	return cmd
}

func run(cfg monitor.Config, opts options) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	fonts, err := oled.LoadFonts(cfg.Fonts)
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	canvas, err := oled.NewFrameCanvas(cfg.Width, cfg.Height, fonts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []oled.Sink
	if cfg.SerialDevice != "" {
		sp, err := oled.OpenSerial(cfg.SerialDevice, cfg.SerialBaud)
		if err != nil {
			return err
		}
		atexit.Register(func() { _ = sp.Close() })
		sinks = append(sinks, sp)
	}
	var win *preview.Window
	if opts.preview {
		win = preview.New(ctx, cfg.Width, cfg.Height)
		sinks = append(sinks, win)
	}
	if len(sinks) == 0 {
		logger.Warn("no serial device or preview configured, rendering headless")
	}
	panel := oled.NewPanel(canvas, sinks...)

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("rtmididrv: %w", err)
	}
	ports := midiport.New(drv)
	atexit.Register(func() { _ = ports.Close() })

	state := monitor.NewState(cfg)
	engine := monitor.NewEngine(cfg, state, monitor.TemplateClassifier{})
	inbox := monitor.NewInbox(1024)
	watcher := monitor.NewWatcher(cfg, state, ports,
		monitor.FileRevision{Path: cfg.TriggerPath},
		func(ev monitor.Event) { inbox.Push(ev) })
	renderer := monitor.NewRenderer(cfg)

	logger.Info("midioled starting",
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"serial", cfg.SerialDevice,
		"preview", opts.preview,
		"trigger", cfg.TriggerPath,
		"debounce", cfg.Debounce,
		"latch", cfg.LatchDuration,
		"flash", cfg.FlashDuration,
		"max_bubbles", cfg.MaxBubbles,
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); engine.Run(ctx, inbox) }()
	go func() { defer wg.Done(); watcher.Run(ctx) }()
	go func() { defer wg.Done(); renderer.Run(ctx, state, panel, nil) }()

	if win != nil {
		if err := win.Run(cfg.PreviewScale); err != nil {
			logger.Error("preview window failed", "err", err)
		}
		stop()
	} else {
		<-ctx.Done()
	}

	wg.Wait()
	watcher.Close()
	logger.Info("midioled stopped")
	return nil
}
