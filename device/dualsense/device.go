// Package dualsense decodes Sony DualSense input reports, encodes output
// reports for USB and Bluetooth, and manages a single controller connection.
package dualsense

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dualsense-cmd/dualsense/internal/log"
	"github.com/dualsense-cmd/dualsense/orientation"
)

// Device is the HID handle a DualSense talks through.
type Device interface {
	// ReadTimeout reads one input report, blocking for at most timeoutMs.
	// It returns 0 bytes on timeout.
	ReadTimeout(b []byte, timeoutMs int) (int, error)
	Write(b []byte) (int, error)
	Close()
}

// DualSense is one open controller connection. Poll and the output setters
// are not safe for concurrent use; callers sharing an instance across
// goroutines must serialize access themselves.
type DualSense struct {
	dev       Device
	transport Transport
	logger    *slog.Logger
	frames    log.RawLogger
	now       func() time.Time
	connected atomic.Bool

	state      ControllerState
	prevState  ControllerState
	filter     *orientation.Madgwick
	lastUpdate time.Time
	buf        []byte

	outMu  sync.Mutex
	output OutputState
}

type Option func(*DualSense)

func WithLogger(l *slog.Logger) Option {
	return func(d *DualSense) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRawLogger hex-dumps every frame read from or written to the device.
func WithRawLogger(f log.RawLogger) Option {
	return func(d *DualSense) {
		if f != nil {
			d.frames = f
		}
	}
}

// WithBeta sets the orientation filter gain.
func WithBeta(beta float64) Option {
	return func(d *DualSense) { d.filter = orientation.NewMadgwick(beta) }
}

// WithClock replaces time.Now for orientation timesteps.
func WithClock(now func() time.Time) Option {
	return func(d *DualSense) {
		if now != nil {
			d.now = now
		}
	}
}

// New wraps an already opened device. The connection starts in the
// connected state; nothing is written to the device.
func New(dev Device, t Transport, opts ...Option) *DualSense {
	d := &DualSense{
		dev:       dev,
		transport: t,
		logger:    slog.Default(),
		frames:    log.NewRaw(nil),
		now:       time.Now,
		filter:    orientation.NewMadgwick(orientation.DefaultBeta),
		buf:       make([]byte, InputReportSizeBT),
		output:    DefaultOutputState(),
	}
	d.state.Orientation = orientation.Identity
	d.prevState.Orientation = orientation.Identity
	for _, o := range opts {
		o(d)
	}
	d.lastUpdate = d.now()
	d.connected.Store(true)
	return d
}

func (d *DualSense) Transport() Transport { return d.transport }

// Connected reports whether the connection is still usable.
func (d *DualSense) Connected() bool { return d.connected.Load() }

// State returns the most recently decoded state.
func (d *DualSense) State() ControllerState { return d.state }

// PrevState returns the state before the most recent successful poll.
func (d *DualSense) PrevState() ControllerState { return d.prevState }

// Poll reads and decodes the next input report.
//
// It returns ErrTimeout when nothing arrived within timeout. Frames with an
// unexpected report id are skipped and leave the input fields unchanged.
// A transport error disconnects the instance; every later call returns
// ErrDisconnected.
func (d *DualSense) Poll(timeout time.Duration) (ControllerState, error) {
	if !d.Connected() {
		return ControllerState{}, ErrDisconnected
	}

	n, err := d.dev.ReadTimeout(d.buf, int(timeout/time.Millisecond))
	if err != nil {
		d.connected.Store(false)
		return ControllerState{}, &Error{Op: "read", Err: err}
	}
	if n == 0 {
		return ControllerState{}, ErrTimeout
	}
	frame := d.buf[:n]
	d.frames.Log(true, frame)

	d.prevState = d.state
	ok, err := d.state.Decode(frame, d.transport)
	if err != nil {
		return ControllerState{}, err
	}
	if !ok {
		d.logger.Log(context.Background(), log.LevelTrace, "unexpected report",
			"transport", d.transport,
			"id", frame[0],
			"len", n)
	}

	now := d.now()
	dt := now.Sub(d.lastUpdate)
	d.lastUpdate = now
	if dt > 0 && dt < time.Second {
		d.state.Orientation = d.filter.Update(
			d.state.Gyroscope.RadPerSec(),
			d.state.Accelerometer.G(),
			dt.Seconds(),
		)
	}

	return d.state, nil
}

// Output returns a copy of the cached output state.
func (d *DualSense) Output() OutputState {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	return d.output
}

// SetOutputState replaces the whole cached output state and sends it.
// The Bluetooth sequence number is kept.
func (d *DualSense) SetOutputState(o OutputState) error {
	return d.apply(func(s *OutputState) {
		seq := s.BTSeq
		*s = o
		s.BTSeq = seq
	})
}

func (d *DualSense) SetLEDColor(r, g, b uint8) error {
	return d.apply(func(s *OutputState) { s.LED = RGB{R: r, G: g, B: b} })
}

func (d *DualSense) SetLightbar(enabled bool) error {
	return d.apply(func(s *OutputState) { s.LightbarEnabled = enabled })
}

func (d *DualSense) SetRumble(left, right uint8) error {
	return d.apply(func(s *OutputState) { s.Rumble = Rumble{Left: left, Right: right} })
}

func (d *DualSense) SetTriggerEffects(l2, r2 TriggerEffect) error {
	return d.apply(func(s *OutputState) {
		s.L2Effect = l2
		s.R2Effect = r2
	})
}

func (d *DualSense) SetPlayerLEDs(p PlayerLEDs) error {
	return d.apply(func(s *OutputState) { s.PlayerLEDs = p & PlayerLEDs(PlayerLEDMask) })
}

func (d *DualSense) SetMuteLED(m MuteLED) error {
	return d.apply(func(s *OutputState) { s.MuteLED = m })
}

// Flush re-sends the cached output state unchanged.
func (d *DualSense) Flush() error {
	return d.apply(func(*OutputState) {})
}

// apply mutates the cached output state and writes the full report in one
// critical section.
func (d *DualSense) apply(mutate func(*OutputState)) error {
	d.outMu.Lock()
	defer d.outMu.Unlock()

	mutate(&d.output)
	if !d.Connected() {
		return ErrDisconnected
	}

	frame := d.output.Encode(d.transport)
	d.frames.Log(false, frame)
	if _, err := d.dev.Write(frame); err != nil {
		d.connected.Store(false)
		return &Error{Op: "write", Err: err}
	}
	if d.transport == TransportBluetooth {
		d.output.NextBTSeq()
	}
	return nil
}

// Close stops rumble, restores the default lightbar and releases the device.
// Output errors are ignored.
func (d *DualSense) Close() {
	if d.Connected() {
		if err := d.SetRumble(0, 0); err != nil {
			d.logger.Debug("failed to stop rumble on close", "error", err)
		}
		if err := d.SetLEDColor(DefaultLedRed, DefaultLedGreen, DefaultLedBlue); err != nil {
			d.logger.Debug("failed to reset lightbar on close", "error", err)
		}
	}
	d.connected.Store(false)
	d.dev.Close()
	d.logger.Debug("DualSense connection closed", "transport", d.transport)
}
