package cmd

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dualsense-cmd/dualsense/device/dualsense"
	"github.com/dualsense-cmd/dualsense/orientation"
	"github.com/dualsense-cmd/dualsense/spatial"
)

type sampleMsg sample

type errMsg struct{ err error }

// monitorModel renders the latest sample. Key presses are forwarded to the
// poll goroutine through control.
type monitorModel struct {
	transport dualsense.Transport
	control   func(func(*spatial.State))
	last      *sample
	samples   uint64
	err       error
}

func newMonitorModel(t dualsense.Transport, control func(func(*spatial.State))) monitorModel {
	return monitorModel{transport: t, control: control}
}

func (m monitorModel) Init() tea.Cmd { return nil }

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.control((*spatial.State).Reset)
		case "p":
			m.control((*spatial.State).ResetPosition)
		case "o":
			m.control((*spatial.State).ResetOrientation)
		case "m":
			m.control(func(s *spatial.State) { s.SetMode((s.Mode() + 1) % (spatial.ModeThreeD + 1)) })
		}
	case sampleMsg:
		s := sample(msg)
		m.last = &s
		m.samples++
	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DualSense over %s   samples: %d\n\n", m.transport, m.samples)
	if m.err != nil {
		fmt.Fprintf(&b, "error: %v\n", m.err)
		return b.String()
	}
	if m.last == nil {
		b.WriteString("waiting for input...\n")
		return b.String()
	}

	st := m.last.State
	lx, ly := st.LeftStick.Normalized()
	rx, ry := st.RightStick.Normalized()
	l2, r2 := st.Triggers.Normalized()
	fmt.Fprintf(&b, "Left stick   %+.2f %+.2f\n", lx, ly)
	fmt.Fprintf(&b, "Right stick  %+.2f %+.2f\n", rx, ry)
	fmt.Fprintf(&b, "Triggers     L2 %.2f  R2 %.2f\n", l2, r2)
	fmt.Fprintf(&b, "Buttons      %s\n", pressedNames(st.Buttons))
	fmt.Fprintf(&b, "Touch        %s  %s\n", touchString(st.Touchpad.Finger1), touchString(st.Touchpad.Finger2))

	g := st.Gyroscope.RadPerSec()
	a := st.Accelerometer.G()
	fmt.Fprintf(&b, "Gyro rad/s   %s\n", vecString(g))
	fmt.Fprintf(&b, "Accel G      %s\n", vecString(a))
	roll, pitch, yaw := st.EulerAngles()
	fmt.Fprintf(&b, "Orientation  roll %+7.1f°  pitch %+7.1f°  yaw %+7.1f°\n", degrees(roll), degrees(pitch), degrees(yaw))

	charge := ""
	if st.Battery.Charging {
		charge = " (charging)"
	} else if st.Battery.FullyCharged {
		charge = " (full)"
	}
	fmt.Fprintf(&b, "Battery      %d%%%s\n\n", st.Battery.Percentage(), charge)

	sp := m.last.Spatial
	fmt.Fprintf(&b, "Spatial mode %s", sp.Mode())
	if sp.Mode() == spatial.ModeAxiDraw {
		fmt.Fprintf(&b, "  force %d", sp.ForceType())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Position mm  %s\n", vecString(sp.Position()))
	fmt.Fprintf(&b, "Velocity     %s\n", vecString(sp.SmoothedVelocity()))
	sr, sp2, sy := sp.Orientation().EulerAngles()
	fmt.Fprintf(&b, "Heading      roll %+7.1f°  pitch %+7.1f°  yaw %+7.1f°\n\n", degrees(sr), degrees(sp2), degrees(sy))

	b.WriteString("r reset  p origin  o level  m mode  q quit\n")
	return b.String()
}

func pressedNames(bt dualsense.Buttons) string {
	named := []struct {
		on   bool
		name string
	}{
		{bt.Cross, "cross"}, {bt.Circle, "circle"}, {bt.Square, "square"}, {bt.Triangle, "triangle"},
		{bt.DPadUp, "up"}, {bt.DPadDown, "down"}, {bt.DPadLeft, "left"}, {bt.DPadRight, "right"},
		{bt.L1, "L1"}, {bt.R1, "R1"}, {bt.L2, "L2"}, {bt.R2, "R2"}, {bt.L3, "L3"}, {bt.R3, "R3"},
		{bt.Options, "options"}, {bt.Create, "create"}, {bt.PS, "ps"}, {bt.Touchpad, "touchpad"}, {bt.Mute, "mute"},
	}
	var out []string
	for _, n := range named {
		if n.on {
			out = append(out, n.name)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, " ")
}

func touchString(f dualsense.TouchFinger) string {
	if !f.Active {
		return "[ ]"
	}
	return fmt.Sprintf("[%d: %4d,%4d]", f.ID, f.X, f.Y)
}

func vecString(v orientation.Vec3) string {
	return fmt.Sprintf("%+9.2f %+9.2f %+9.2f", v.X, v.Y, v.Z)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
