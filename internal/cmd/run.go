package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapscroll/snapscroll/evdev"
	"github.com/snapscroll/snapscroll/input"
	"github.com/snapscroll/snapscroll/internal/configpaths"
	"github.com/snapscroll/snapscroll/internal/db"
	logpkg "github.com/snapscroll/snapscroll/internal/log"
	"github.com/snapscroll/snapscroll/internal/pipeline"
	"github.com/snapscroll/snapscroll/internal/tap"
	"github.com/snapscroll/snapscroll/remote"
	"github.com/snapscroll/snapscroll/snap"
	"github.com/snapscroll/snapscroll/uinput"
)

// Run is the filter daemon: grab a device (and/or accept remote deltas),
// snap the scroll stream and re-emit it through a virtual device.
type Run struct {
	Device     string `arg:"" optional:"" help:"Input device to filter (/dev/input/eventN)"`
	Grab       bool   `help:"Grab the device exclusively so the desktop only sees filtered events" default:"true" negatable:""`
	OutputName string `help:"Name of the virtual output device" default:"snapscroll wheel"`

	Filter snap.Config         `embed:"" prefix:"filter."`
	Remote remote.ServerConfig `embed:"" prefix:"remote."`

	TapAddr string `help:"Websocket tap listen address; empty disables" default:""`
	Record  string `help:"Record decisions to this SQLite file" type:"path"`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, trace logpkg.TraceLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.start(ctx, logger, trace)
}

func (r *Run) start(ctx context.Context, logger *slog.Logger, trace logpkg.TraceLogger) error {
	if r.Device == "" && r.Remote.Addr == "" {
		return fmt.Errorf("nothing to filter: pass a device path or enable the remote source")
	}

	var observers []func(snap.Decision)

	var tapSrv *tap.Server
	if r.TapAddr != "" {
		tapSrv = tap.NewServer(r.TapAddr, logger)
		observers = append(observers, tapSrv.Broadcast)
	}

	if r.Record != "" {
		rec, err := db.Open(r.Record)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer rec.Close()
		observers = append(observers, func(d snap.Decision) {
			if err := rec.RecordDecision(d); err != nil {
				logger.Warn("record decision failed", "error", err)
			}
		})
		logger.Info("recording decisions", "path", r.Record)
	}

	proc := snap.New(r.Filter,
		snap.WithLogger(logger),
		snap.WithObserver(func(d snap.Decision) {
			for _, o := range observers {
				o(d)
			}
		}),
	)
	logger.Info("filter configured",
		"window", proc.Config().RequireNSamples,
		"lockDuration", proc.Config().LockDuration,
		"lockEvents", proc.Config().LockForNextNEvents)

	sink, err := uinput.Create(r.OutputName,
		[]uint16{input.RelX, input.RelY, input.RelWheel, input.RelHWheel},
		uinput.MouseButtons)
	if err != nil {
		return fmt.Errorf("create virtual device: %w", err)
	}
	defer sink.Close()

	p := &pipeline.Pipeline{Proc: proc, Sink: sink, Logger: logger, Trace: trace}

	frames := make(chan []input.Event, 32)
	errc := make(chan error, 3)

	if r.Device != "" {
		dev, err := evdev.Open(r.Device, r.Grab)
		if err != nil {
			return err
		}
		defer dev.Close()
		logger.Info("filtering device", "path", r.Device, "name", dev.Name(), "grabbed", r.Grab)

		// Unblock the blocking read on shutdown.
		go func() {
			<-ctx.Done()
			dev.Close()
		}()
		go func() { errc <- pipeline.ReadFrames(ctx, dev, frames) }()
	}

	if r.Remote.Addr != "" {
		keyFile := r.Remote.KeyFile
		if keyFile == "" {
			if keyFile, err = configpaths.DefaultKeyFile(); err != nil {
				return fmt.Errorf("resolve key file: %w", err)
			}
		}
		key, created, err := remote.LoadOrCreateKey(keyFile)
		if err != nil {
			return err
		}
		if created {
			logger.Info("generated remote source key", "path", keyFile)
		}

		events := make(chan input.Event, 32)
		srv := remote.NewServer(r.Remote.Addr, key, logger, events)
		go func() { errc <- srv.ListenAndServe(ctx) }()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-events:
					select {
					case frames <- []input.Event{ev}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	if tapSrv != nil {
		go func() { errc <- tapSrv.ListenAndServe(ctx) }()
	}

	go func() { errc <- p.Run(ctx, frames) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errc:
		if err != nil {
			logger.Error("pipeline failed", "error", err)
		}
		return err
	}
}
