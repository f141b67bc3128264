package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
	"github.com/dualsense-cmd/dualsense/internal/hid"
	"github.com/dualsense-cmd/dualsense/internal/log"
	"github.com/dualsense-cmd/dualsense/orientation"
	"github.com/dualsense-cmd/dualsense/spatial"
)

type Monitor struct {
	Serial   string                    `help:"Connect to the controller with this serial number" env:"DUALSENSE_SERIAL"`
	PollRate int                       `help:"Polls per second" default:"100" env:"DUALSENSE_POLL_RATE"`
	Beta     float64                   `help:"Orientation filter gain" default:"0.1"`
	LED      []uint8                   `help:"Lightbar color as r,g,b" default:"0,255,0"`
	Mode     spatial.Mode              `help:"Spatial mode (standard, heading, accelerometer, axidraw, threed)" default:"standard"`
	JSON     bool                      `help:"Print one JSON object per sample instead of the live view"`
	Spatial  spatial.IntegrationConfig `embed:"" prefix:"spatial."`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.Start(ctx, hid.Default, logger, rawLogger)
}

func (m *Monitor) validate() error {
	if m.PollRate <= 0 {
		return fmt.Errorf("poll rate must be positive, got %d", m.PollRate)
	}
	if len(m.LED) != 3 {
		return fmt.Errorf("led needs three components, got %d", len(m.LED))
	}
	return m.Spatial.Validate()
}

// Start connects through backend and streams samples until ctx ends, the
// user quits or the controller goes away.
func (m *Monitor) Start(ctx context.Context, backend hid.Backend, logger *slog.Logger, rawLogger log.RawLogger) error {
	if err := m.validate(); err != nil {
		return err
	}

	ds, err := backend.Connect(logger, m.Serial,
		dualsense.WithLogger(logger),
		dualsense.WithRawLogger(rawLogger),
		dualsense.WithBeta(m.Beta),
	)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer ds.Close()

	if err := ds.SetLEDColor(m.LED[0], m.LED[1], m.LED[2]); err != nil {
		logger.Warn("failed to set lightbar", "error", err)
	}

	engine := spatial.New(m.Spatial)
	engine.SetMode(m.Mode)

	p := &poller{
		ds:       ds,
		engine:   engine,
		interval: time.Second / time.Duration(m.PollRate),
		logger:   logger,
		controls: make(chan func(*spatial.State), 4),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if m.JSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return p.run(ctx, jsonSink(os.Stdout, logger))
	}
	return runTUI(ctx, cancel, p)
}

// sample is one decoded controller state with the spatial state derived
// from it. Spatial is a snapshot owned by the receiver.
type sample struct {
	At        time.Time
	Transport dualsense.Transport
	State     dualsense.ControllerState
	Spatial   *spatial.State
}

// poller owns the connection and the spatial engine; nothing else touches
// them while run is active.
type poller struct {
	ds       *dualsense.DualSense
	engine   *spatial.State
	interval time.Duration
	logger   *slog.Logger
	controls chan func(*spatial.State)
}

// run polls until ctx is done or the connection fails. Timeouts are
// expected and ignored; truncated reports are logged and skipped.
func (p *poller) run(ctx context.Context, emit func(sample)) error {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-p.controls:
			f(p.engine)
		default:
		}

		st, err := p.ds.Poll(p.interval)
		switch {
		case errors.Is(err, dualsense.ErrTimeout):
			continue
		case errors.Is(err, dualsense.ErrInvalidReport):
			p.logger.Debug("skipping report", "error", err)
			continue
		case err != nil:
			return fmt.Errorf("poll: %w", err)
		}

		now := time.Now()
		p.engine.Integrate(&st, now.Sub(last).Seconds())
		last = now

		emit(sample{
			At:        now,
			Transport: p.ds.Transport(),
			State:     st,
			Spatial:   p.engine.Snapshot(),
		})
	}
}

// control queues f to run on the poll goroutine. It never blocks; when the
// queue is full f is dropped.
func (p *poller) control(f func(*spatial.State)) {
	select {
	case p.controls <- f:
	default:
	}
}

type spatialJSON struct {
	Mode             spatial.Mode           `json:"mode"`
	Position         [3]float64             `json:"position"`
	Velocity         [3]float64             `json:"velocity"`
	SmoothedVelocity [3]float64             `json:"smoothedVelocity"`
	AngularVelocity  [3]float64             `json:"angularVelocity"`
	Orientation      orientation.Quaternion `json:"orientation"`
	ForceType        uint8                  `json:"forceType"`
}

type sampleJSON struct {
	Time      time.Time                 `json:"time"`
	Transport string                    `json:"transport"`
	State     dualsense.ControllerState `json:"state"`
	Battery   uint8                     `json:"batteryPercent"`
	EulerDeg  [3]float64                `json:"eulerDeg"`
	Spatial   spatialJSON               `json:"spatial"`
}

func toJSON(s sample) sampleJSON {
	r, p, y := s.State.EulerAngles()
	return sampleJSON{
		Time:      s.At,
		Transport: s.Transport.String(),
		State:     s.State,
		Battery:   s.State.Battery.Percentage(),
		EulerDeg:  [3]float64{degrees(r), degrees(p), degrees(y)},
		Spatial: spatialJSON{
			Mode:             s.Spatial.Mode(),
			Position:         s.Spatial.Position().Array(),
			Velocity:         s.Spatial.Velocity().Array(),
			SmoothedVelocity: s.Spatial.SmoothedVelocity().Array(),
			AngularVelocity:  s.Spatial.AngularVelocity().Array(),
			Orientation:      s.Spatial.Orientation(),
			ForceType:        s.Spatial.ForceType(),
		},
	}
}

func jsonSink(w io.Writer, logger *slog.Logger) func(sample) {
	enc := json.NewEncoder(w)
	return func(s sample) {
		if err := enc.Encode(toJSON(s)); err != nil {
			logger.Error("failed to write sample", "error", err)
		}
	}
}

func runTUI(ctx context.Context, cancel context.CancelFunc, p *poller) error {
	prog := tea.NewProgram(newMonitorModel(p.ds.Transport(), p.control))

	errCh := make(chan error, 1)
	go func() {
		err := p.run(ctx, func(s sample) { prog.Send(sampleMsg(s)) })
		if err != nil {
			prog.Send(errMsg{err})
		}
		errCh <- err
	}()
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()

	_, err := prog.Run()
	cancel()
	pollErr := <-errCh
	if err != nil {
		return err
	}
	return pollErr
}
