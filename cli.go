package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	display    int
	capture    string
	listen     string
	pick       bool
	noPreview  bool
}

// loadConfig reads the config file and applies the flags the user set.
func (f *rootFlags) loadConfig(cmd *cobra.Command) (Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("display") {
		cfg.Display = f.display
	}
	if flags.Changed("capture") {
		cfg.Capture = f.capture
	}
	if flags.Changed("listen") {
		cfg.Listen = f.listen
	}
	if f.noPreview {
		cfg.Preview = false
	}
	return cfg, cfg.Validate()
}

// NewRootCmd returns the pixelpick command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "pixelpick",
		Short:         "pixelpick - pick a color from the screen",
		Long:          "Pick a pixel color from the screen and inspect it with its lighter and darker shades.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPicker(cmd.Context(), cfg, f.pick)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to config.toml (default ~/.pixelpick/config.toml)")
	pf.IntVar(&f.display, "display", 0, "display to pick from")
	pf.StringVar(&f.capture, "capture", CaptureAuto, "capture method: auto, portal, ffmpeg or x11")

	root.Flags().StringVar(&f.listen, "listen", "", "serve the message protocol and metrics on this address")
	root.Flags().BoolVar(&f.pick, "pick", false, "start picking immediately")
	root.Flags().BoolVar(&f.noPreview, "no-preview", false, "do not draw a screen preview under the picking overlay")

	root.AddCommand(newSampleCmd(f))
	root.AddCommand(newShadesCmd())
	root.AddCommand(newHueCmd(f))
	return root
}

func runPicker(ctx context.Context, cfg Config, pick bool) error {
	log, closeLog, err := NewFileLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	capturer, method, err := NewCapturer(cfg.Capture)
	if err != nil {
		return fmt.Errorf("creating capturer: %w", err)
	}
	log.WithField("method", method).Info("capturer ready")

	metrics := NewMetrics()
	coord := NewCoordinator(capturer, CoordinatorOptions{
		Preview: cfg.Preview,
		Sinks:   buildSinks(cfg, log),
		Log:     log,
		Metrics: metrics,
	})
	defer coord.Close()

	page := &programPage{}
	targetID := fmt.Sprintf("display-%d", cfg.Display)
	coord.Attach(targetID, cfg.Display, page)
	defer coord.Detach(targetID)

	if cfg.Listen != "" {
		srv := NewControlServer(cfg.Listen, coord, metrics, log)
		srv.Start()
		defer srv.Shutdown(context.Background())
	}

	model := newPageModel(ctx, targetID, coord, log, cfg.ToastDuration())
	model.pickOnStart = pick

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := page.run(prog); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// buildSinks returns the configured color sinks. A sink that cannot be set up
// is logged and skipped so picking still works.
func buildSinks(cfg Config, log *logrus.Logger) []ColorSink {
	var sinks []ColorSink
	if cfg.Hue.Enabled {
		creds, found, err := LoadCredentials(cfg.Hue.BridgeID)
		switch {
		case err != nil:
			log.WithError(err).Warn("loading hue credentials failed, hue sink disabled")
		case !found:
			log.WithField("bridge", cfg.Hue.BridgeID).Warn("bridge not paired, hue sink disabled")
		default:
			sink, err := NewHueSink(cfg.Hue, creds, log)
			if err != nil {
				log.WithError(err).Warn("hue sink disabled")
				break
			}
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

func newSampleCmd(f *rootFlags) *cobra.Command {
	var x, y int

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "print the color of one pixel",
		Long:  "Capture the display once and print the color at --x/--y with its shades.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.loadConfig(cmd)
			if err != nil {
				return err
			}
			capturer, method, err := NewCapturer(cfg.Capture)
			if err != nil {
				return err
			}
			coord := NewCoordinator(capturer, CoordinatorOptions{})
			defer coord.Close()

			const target = "cli"
			coord.Attach(target, cfg.Display, nil)

			out := cmd.OutOrStdout()
			printStatus(out, "info", fmt.Sprintf("Capturing display %d via %s", cfg.Display, method))
			c, err := coord.ResolveColor(cmd.Context(), target, Point{X: x, Y: y})
			if err != nil {
				return err
			}
			printStatus(out, "success", fmt.Sprintf("Pixel %s", Point{X: x, Y: y}))
			printShades(out, c)
			return nil
		},
	}

	cmd.Flags().IntVar(&x, "x", 0, "pixel column")
	cmd.Flags().IntVar(&y, "y", 0, "pixel row")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagRequired("y")
	return cmd
}

func newShadesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shades <color>",
		Short: "print the lighter and darker shades of a color",
		Long:  "Print a color given as #rrggbb or rgb(r, g, b) together with its lighter and darker shades.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ParseColor(args[0])
			if err != nil {
				return err
			}
			printShades(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newHueCmd(f *rootFlags) *cobra.Command {
	hue := &cobra.Command{
		Use:   "hue",
		Short: "mirror picked colors on Philips Hue lights",
	}

	hue.AddCommand(&cobra.Command{
		Use:   "pair",
		Short: "discover and pair a Hue bridge and choose an entertainment area",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := LoadConfig(f.configPath)
			if err != nil {
				return err
			}

			result, err := tea.NewProgram(newHueSetupModel()).Run()
			if err != nil {
				return err
			}
			m := result.(hueSetupModel)
			if m.err != nil {
				return m.err
			}
			hc, ok := m.hueConfig()
			if !ok {
				printStatus(cmd.OutOrStdout(), "warning", "Setup cancelled")
				return nil
			}

			cfg.Hue = hc
			if err := SaveConfig(f.configPath, cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			printStatus(cmd.OutOrStdout(), "success",
				fmt.Sprintf("Bridge %s paired, mirroring on %s", m.bridge.ID, m.area))
			return nil
		},
	})
	return hue
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	ctx, stop := signalContext()
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printStatus(os.Stderr, "error", err.Error())
		return 1
	}
	return 0
}
