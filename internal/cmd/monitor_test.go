package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
	"github.com/dualsense-cmd/dualsense/spatial"
)

// scriptDevice returns the queued frames, then times out forever unless
// failAfter is set.
type scriptDevice struct {
	mu        sync.Mutex
	frames    [][]byte
	failAfter error
	writes    int
}

func (d *scriptDevice) ReadTimeout(b []byte, _ int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		if d.failAfter != nil {
			return 0, d.failAfter
		}
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	f := d.frames[0]
	d.frames = d.frames[1:]
	return copy(b, f), nil
}

func (d *scriptDevice) Write(b []byte) (int, error) {
	d.mu.Lock()
	d.writes++
	d.mu.Unlock()
	return len(b), nil
}

func (d *scriptDevice) Close() {}

func usbFrame(lx uint8) []byte {
	b := make([]byte, dualsense.InputReportSizeUSB)
	b[0] = dualsense.ReportIDInputUSB
	p := b[1:]
	p[dualsense.InOffsetLeftStickX] = lx
	p[dualsense.InOffsetLeftStickY] = 128
	p[dualsense.InOffsetRightStickX] = 128
	p[dualsense.InOffsetRightStickY] = 128
	p[dualsense.InOffsetButtons0] = dualsense.DPadNeutral
	p[dualsense.InOffsetAccel+5] = 0x20 // Z = 8192
	return b
}

func newTestPoller(dev dualsense.Device) *poller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &poller{
		ds:       dualsense.New(dev, dualsense.TransportUSB),
		engine:   spatial.New(spatial.DefaultIntegrationConfig()),
		interval: time.Millisecond,
		logger:   logger,
		controls: make(chan func(*spatial.State), 4),
	}
}

func TestPollerStopsOnTransportError(t *testing.T) {
	gone := errors.New("device unplugged")
	dev := &scriptDevice{
		frames:    [][]byte{usbFrame(255), usbFrame(255)[:10], usbFrame(255)},
		failAfter: gone,
	}
	p := newTestPoller(dev)

	var got []sample
	err := p.run(context.Background(), func(s sample) { got = append(got, s) })
	require.ErrorIs(t, err, gone)
	require.Len(t, got, 2, "truncated report is skipped")

	assert.Equal(t, uint8(255), got[1].State.LeftStick.X)
	assert.Greater(t, got[1].Spatial.Velocity().X, 0.0)
	assert.Greater(t, got[1].Spatial.Velocity().X, got[0].Spatial.Velocity().X)
	assert.Equal(t, dualsense.TransportUSB, got[0].Transport)
}

func TestPollerStopsOnCancel(t *testing.T) {
	p := newTestPoller(&scriptDevice{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.run(ctx, func(sample) { t.Fatal("no samples expected") })
	assert.NoError(t, err)
}

func TestPollerAppliesControls(t *testing.T) {
	dev := &scriptDevice{frames: [][]byte{usbFrame(128)}, failAfter: errors.New("done")}
	p := newTestPoller(dev)
	p.control(func(s *spatial.State) { s.SetMode(spatial.ModeAxiDraw) })

	var last sample
	_ = p.run(context.Background(), func(s sample) { last = s })
	assert.Equal(t, spatial.ModeAxiDraw, last.Spatial.Mode())
}

func TestToJSON(t *testing.T) {
	eng := spatial.New(spatial.DefaultIntegrationConfig())
	st := dualsense.ControllerState{Battery: dualsense.Battery{Level: 11}}
	st.Orientation.W = 1
	out := toJSON(sample{Transport: dualsense.TransportBluetooth, State: st, Spatial: eng.Snapshot()})

	assert.Equal(t, "bluetooth", out.Transport)
	assert.Equal(t, uint8(100), out.Battery)
	assert.Equal(t, spatial.ModeStandard, out.Spatial.Mode)
	assert.Equal(t, [3]float64{}, out.EulerDeg)
}

func TestMonitorModel(t *testing.T) {
	var queued []func(*spatial.State)
	m := newMonitorModel(dualsense.TransportUSB, func(f func(*spatial.State)) { queued = append(queued, f) })
	assert.Contains(t, m.View(), "waiting for input")

	eng := spatial.New(spatial.DefaultIntegrationConfig())
	st := dualsense.ControllerState{Buttons: dualsense.Buttons{Cross: true, R1: true}}
	st.Orientation.W = 1
	next, _ := m.Update(sampleMsg(sample{State: st, Spatial: eng.Snapshot()}))
	m = next.(monitorModel)
	view := m.View()
	assert.Contains(t, view, "cross R1")
	assert.Contains(t, view, "Spatial mode standard")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = next.(monitorModel)
	require.Len(t, queued, 1)
	queued[0](eng)
	assert.Equal(t, spatial.ModeHeading, eng.Mode())

	// Presses between samples each advance from the engine's current mode.
	for range 2 {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
		m = next.(monitorModel)
	}
	require.Len(t, queued, 3)
	queued[1](eng)
	queued[2](eng)
	assert.Equal(t, spatial.ModeAxiDraw, eng.Mode())

	eng.SetMode(spatial.ModeThreeD)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = next.(monitorModel)
	queued[3](eng)
	assert.Equal(t, spatial.ModeStandard, eng.Mode())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	next, _ = m.Update(errMsg{errors.New("lost")})
	assert.True(t, strings.Contains(next.View(), "error: lost"))
}

func TestMonitorValidate(t *testing.T) {
	m := Monitor{PollRate: 100, LED: []uint8{0, 255, 0}, Spatial: spatial.DefaultIntegrationConfig()}
	assert.NoError(t, m.validate())

	m.LED = []uint8{1}
	assert.Error(t, m.validate())

	m.LED = []uint8{0, 0, 0}
	m.PollRate = 0
	assert.Error(t, m.validate())
}
