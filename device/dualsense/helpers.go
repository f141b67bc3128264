package dualsense

import "math"

// ApplyDeadzone zeroes |v| < dz and rescales the rest so that the deadzone
// edge maps to 0 and full deflection maps to 1, preserving sign.
func ApplyDeadzone(v, dz float64) float64 {
	if math.Abs(v) < dz {
		return 0
	}
	if dz >= 1 {
		return 0
	}
	mag := (math.Abs(v) - dz) / (1 - dz)
	return math.Copysign(clamp(mag, 0, 1), v)
}

// Pressed returns the buttons that are down in cur but were up in prev.
func Pressed(prev, cur Buttons) Buttons {
	return edges(prev, cur, func(p, c bool) bool { return !p && c })
}

// Released returns the buttons that were down in prev and are up in cur.
func Released(prev, cur Buttons) Buttons {
	return edges(prev, cur, func(p, c bool) bool { return p && !c })
}

func edges(p, c Buttons, f func(p, c bool) bool) Buttons {
	return Buttons{
		Cross:     f(p.Cross, c.Cross),
		Circle:    f(p.Circle, c.Circle),
		Square:    f(p.Square, c.Square),
		Triangle:  f(p.Triangle, c.Triangle),
		DPadUp:    f(p.DPadUp, c.DPadUp),
		DPadDown:  f(p.DPadDown, c.DPadDown),
		DPadLeft:  f(p.DPadLeft, c.DPadLeft),
		DPadRight: f(p.DPadRight, c.DPadRight),
		L1:        f(p.L1, c.L1),
		R1:        f(p.R1, c.R1),
		L2:        f(p.L2, c.L2),
		R2:        f(p.R2, c.R2),
		L3:        f(p.L3, c.L3),
		R3:        f(p.R3, c.R3),
		Options:   f(p.Options, c.Options),
		Create:    f(p.Create, c.Create),
		PS:        f(p.PS, c.PS),
		Touchpad:  f(p.Touchpad, c.Touchpad),
		Mute:      f(p.Mute, c.Mute),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func hypot(x, y float64) float64 { return math.Sqrt(x*x + y*y) }
