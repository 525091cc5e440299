package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beanboi7/chyp-8/config"
	"github.com/beanboi7/chyp-8/emu/audio"
	"github.com/beanboi7/chyp-8/emu/cpu"
	"github.com/beanboi7/chyp-8/emu/runner"
	"github.com/beanboi7/chyp-8/emu/screen"
	"github.com/beanboi7/chyp-8/emu/term"
	"github.com/beanboi7/chyp-8/emu/trace"
	"github.com/faiface/pixel/pixelgl"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start path/ROM",
	Short: "load and start the Emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  start,
}

func init() {
	flags := startCmd.Flags()
	flags.IntP("refresh", "r", 60, "sets the refresh rate of the display in Hz")
	flags.Int("cpu", 700, "instructions executed per second")
	flags.Float64("scale", 10, "window size of one CHIP-8 pixel")
	flags.Bool("headless", false, "render in the terminal instead of a window")
	flags.Bool("trace", false, "log every executed instruction, needs --debug")
	flags.String("shift-quirk", "vy", "source register of 8XY6 and 8XYE: vy or vx")
	flags.Bool("store-quirk", false, "FX55 and FX65 advance the index register")
	flags.Int64("seed", 0, "random seed for CXNN, 0 seeds from the clock")
	flags.String("beep", "", "mp3 sample played while the sound timer runs")

	bindFlags(flags, map[string]string{
		config.KeyRefresh:    "refresh",
		config.KeyCPUHz:      "cpu",
		config.KeyScale:      "scale",
		config.KeyHeadless:   "headless",
		config.KeyTrace:      "trace",
		config.KeyShiftQuirk: "shift-quirk",
		config.KeyStoreQuirk: "store-quirk",
		config.KeySeed:       "seed",
		config.KeyBeep:       "beep",
	})
}

// chyp8 start 'path/to/ROM' -r 69
func start(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	emu, err := newEMU(cfg, args[0])
	if err != nil {
		return err
	}

	bindings, err := cfg.Bindings()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Headless {
		frontend, err := term.New(logger, os.Stdin, os.Stdout, bindings)
		if err != nil {
			return err
		}
		if err := frontend.Start(); err != nil {
			return err
		}
		defer func() {
			if err := frontend.Stop(); err != nil {
				logger.Error("Restoring terminal failed", err)
			}
		}()
		return run(ctx, cfg, emu, frontend)
	}

	// the window has to live on the main thread
	pixelgl.Run(func() {
		var win *screen.Window
		win, err = screen.New(logger, cfg.Scale, bindings)
		if err != nil {
			return
		}
		defer win.Destroy()
		err = run(ctx, cfg, emu, win)
	})
	return err
}

func newEMU(cfg config.Config, romPath string) (*cpu.EMU, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if cfg.Trace {
		opts = append(opts, cpu.WithTracer(trace.New(logger)))
	}

	emu := cpu.NewEMU(opts...)
	if err := emu.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("loading ROM %s: %w", romPath, err)
	}
	logger.Info("ROM loaded", log.String("path", romPath), log.Int("size", len(rom)))
	return emu, nil
}

func run(ctx context.Context, cfg config.Config, emu *cpu.EMU, frontend runner.Frontend) error {
	var sound runner.Sound
	if cfg.Beep != "" {
		beeper, err := audio.Open(cfg.Beep)
		if err != nil {
			logger.Error("Sound disabled", err)
		} else {
			sound = beeper
		}
	}

	r, err := runner.New(logger, emu, frontend, sound, runner.Options{
		CPUHz:   cfg.CPUHz,
		Refresh: cfg.Refresh,
	})
	if err != nil {
		return err
	}

	err = r.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("Interrupted", log.Int("steps", int(r.Steps())))
		return nil
	}
	return err
}
