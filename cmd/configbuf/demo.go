package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/configbuf/internal/config"
	"github.com/1broseidon/configbuf/internal/configure"
	"github.com/1broseidon/configbuf/internal/window"
	"github.com/1broseidon/configbuf/internal/x11"
)

func runDemo(args []string) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Path to config file (default ~/.config/configbuf/config.yaml)")
	steps := fs.Int("steps", 0, "Override demo.steps")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: configbuf demo [--config path] [--steps n]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Create a decorated window and animate it while holding a configure lock.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	if *steps > 0 {
		cfg.Demo.Steps = *steps
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	if err := demo(cfg, logger); err != nil {
		logger.Error("demo failed", "error", err)
		return 1
	}
	return 0
}

func demo(cfg *config.Config, logger *slog.Logger) error {
	conn, err := x11.NewConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	d := cfg.Decoration
	start := cfg.Demo.Start
	triple, err := conn.CreateTriple(x11.TripleSpec{
		Title:        cfg.Demo.Title,
		X:            start.X - d.Left,
		Y:            start.Y - d.Top,
		Width:        start.Width,
		Height:       start.Height,
		Left:         d.Left,
		Top:          d.Top,
		Right:        d.Right,
		Bottom:       d.Bottom,
		FrameColor:   0x3c3836,
		ClientColor:  0xebdbb2,
		ClientBorder: d.BorderWidth,
	})
	if err != nil {
		return err
	}
	defer triple.Destroy()

	server := x11.NewServerWindow(conn, triple.Client.Id, triple.Wrapper.Id, triple.Frame.Id, logger)
	server.SelectShapeInput()
	logger.Debug("windows created",
		"frame", server.Frame(),
		"wrapper", server.Wrapper(),
		"client", server.Client())

	win := window.New(server, window.Extents{Left: d.Left, Right: d.Right, Top: d.Top, Bottom: d.Bottom},
		configure.Options{Logger: logger, Policy: cfg.Policy()})
	if err := win.SetGeometry(rectFromGeometry(start)); err != nil {
		return err
	}
	win.SetBorderWidth(d.BorderWidth)

	notifies := 0
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		notifies++
		logger.Debug("frame configured", "x", ev.X, "y", ev.Y, "width", ev.Width, "height", ev.Height)
	}).Connect(conn.XUtil, triple.Frame.Id)
	xevent.HookFun(func(xu *xgbutil.XUtil, ev interface{}) bool {
		if _, ok := ev.(shape.NotifyEvent); ok {
			server.ShapeChanged()
		}
		return true
	}).Connect(conn.XUtil)

	pingBefore, pingAfter, pingQuit := xevent.MainPing(conn.XUtil)
	quitSeen := false
	defer func() {
		if !quitSeen {
			stopEvents(conn.Quit, triple.Destroy, pingBefore, pingAfter, pingQuit, time.Second)
		}
	}()

	ticker := time.NewTicker(cfg.Demo.Interval)
	defer ticker.Stop()

	lock := win.Freeze()
	defer lock.Close()

	logger.Info("animation started",
		"steps", cfg.Demo.Steps,
		"checkpoint_every", cfg.Demo.CheckpointEvery,
		"invariants", cfg.Policy())

	step := 0
	for step < cfg.Demo.Steps {
		select {
		case <-pingBefore:
			// Event callbacks run between the two pings; the buffer is
			// only ever touched from this goroutine.
			<-pingAfter
		case <-pingQuit:
			quitSeen = true
			return fmt.Errorf("X event loop stopped")
		case <-ticker.C:
			step++
			if err := win.SetGeometry(interpolate(cfg.Demo.Start, cfg.Demo.End, step, cfg.Demo.Steps)); err != nil {
				return err
			}
			if cfg.Demo.Raise && step == cfg.Demo.Steps/2 {
				win.Raise()
			}
			if cfg.Demo.CheckpointEvery > 0 && step%cfg.Demo.CheckpointEvery == 0 {
				// Flush what has accumulated, then keep batching.
				lock.Release()
				lock.Lock()
			}
		}
	}
	lock.Close()

	attrib, err := win.ServerFrameGeometry()
	if err != nil {
		return err
	}
	conn.Sync()

	logger.Info("animation finished",
		"steps", step,
		"dispatches", win.Buffer().Dispatches(),
		"frame_notifies", notifies,
		"frame_x", attrib.X,
		"frame_y", attrib.Y,
		"frame_width", attrib.Width,
		"frame_height", attrib.Height)

	return nil
}

// stopEvents ends the MainPing loop and keeps answering its pings until it
// reports quitting, so its goroutine never blocks on a send. wake must
// generate at least one event to unblock the loop's pending read.
func stopEvents(quit, wake func(), before, after, done <-chan struct{}, timeout time.Duration) bool {
	quit()
	wake()
	deadline := time.After(timeout)
	for {
		select {
		case <-before:
			<-after
		case <-done:
			return true
		case <-deadline:
			return false
		}
	}
}

func rectFromGeometry(g config.Geometry) window.Rect {
	return window.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// interpolate returns the geometry step/steps of the way from a to b.
func interpolate(a, b config.Geometry, step, steps int) window.Rect {
	lerp := func(from, to int) int {
		return from + (to-from)*step/steps
	}
	return window.Rect{
		X:      lerp(a.X, b.X),
		Y:      lerp(a.Y, b.Y),
		Width:  lerp(a.Width, b.Width),
		Height: lerp(a.Height, b.Height),
	}
}
