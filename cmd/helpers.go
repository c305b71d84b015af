// Package cmd holds the cobra subcommands for direct light control
// from a terminal, without going through a running daemon.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/busylightd/internal/color"
	"github.com/smazurov/busylightd/internal/controller"
	"github.com/smazurov/busylightd/internal/effect"
	"github.com/smazurov/busylightd/internal/events"
	"github.com/smazurov/busylightd/internal/logging"
	"github.com/smazurov/busylightd/internal/transport"
)

// lightFlags are the selection and shaping flags shared by every
// light-control subcommand.
type lightFlags struct {
	lightIDs  []int
	all       bool
	name      string
	led       int
	dim       float64
	timeoutMs int
	debug     bool
}

func (f *lightFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&f.lightIDs, "light-id", "l", nil, "target lights by 0-based index (repeatable)")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "target every connected light")
	cmd.Flags().StringVar(&f.name, "name", "", "target lights by exact product name")
	cmd.Flags().IntVar(&f.led, "led", 0, "LED index, 0 means all LEDs")
	cmd.Flags().Float64VarP(&f.dim, "dim", "d", 1.0, "brightness factor (0,1]")
	cmd.Flags().IntVar(&f.timeoutMs, "timeout", 0, "turn back off after this many milliseconds")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")
}

func (f *lightFlags) timeout() time.Duration {
	return time.Duration(f.timeoutMs) * time.Millisecond
}

// selection resolves the flags against the controller. No flags means
// the first light, matching the original front panel behaviour of
// "operate on the light you plugged in".
func (f *lightFlags) selection(ctrl *controller.Controller) controller.Selection {
	switch {
	case f.all:
		return ctrl.All()
	case f.name != "":
		return ctrl.ByName(f.name, 0)
	case len(f.lightIDs) > 0:
		return ctrl.ByIndex(f.lightIDs...)
	default:
		return ctrl.First()
	}
}

// withController builds the device plane, runs fn, and tears the plane
// down again, driving every touched light through its finalizer.
func (f *lightFlags) withController(fn func(ctrl *controller.Controller) error) error {
	level := "info"
	if f.debug {
		level = "debug"
	}
	logging.Initialize(logging.Config{Level: level, Format: "text"})
	logger := logging.GetLogger("cli")

	sys, err := transport.NewSystem()
	if err != nil {
		return fmt.Errorf("initializing transports: %w", err)
	}
	defer sys.Close()

	ctrl := controller.New(sys, events.New(), logger, controller.Config{})
	defer ctrl.Shutdown()

	if err := ctrl.Start(context.Background()); err != nil {
		return err
	}
	if len(ctrl.List()) == 0 {
		return fmt.Errorf("no lights found")
	}

	return fn(ctrl)
}

// parseColorArg reads the positional color argument with a default.
func parseColorArg(args []string, fallback color.RGB) (color.RGB, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	return color.Parse(args[0])
}

// waitForEffect keeps the process alive while an effect plays: a
// finite effect for its computed duration, an infinite one until
// interrupt. Interrupting either way runs the controller shutdown
// deferred above, which finalizes every task to dark.
func waitForEffect(eff *effect.Effect, timeout time.Duration) {
	if timeout > 0 {
		sleepInterruptibly(timeout)
		return
	}
	if eff == nil || eff.Infinite() {
		waitForInterrupt()
		return
	}

	var cycle time.Duration
	for _, frame := range eff.Cycle {
		d := frame.Dwell
		if d <= 0 {
			d = 500 * time.Millisecond
		}
		cycle += d
	}
	sleepInterruptibly(time.Duration(eff.Count)*cycle + 250*time.Millisecond)
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	<-sig
}

func sleepInterruptibly(d time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-sig:
	case <-time.After(d):
	}
}
