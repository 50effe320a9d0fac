package render

import "math"

// physical parameters of the entrance spring
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

// entrance used by both presets
var DefaultSpring = SpringConfig{
	Stiffness: 100,
	Damping:   30,
	Mass:      0.5,
}

// distance from rest below which the spring is considered settled
const springRestThreshold = 0.001

// critical returns cfg with damping raised to at least critical, so the
// curve never overshoots
func (cfg SpringConfig) critical() SpringConfig {
	c := 2 * math.Sqrt(cfg.Stiffness*cfg.Mass)
	if cfg.Damping < c {
		cfg.Damping = c
	}
	return cfg
}

// Spring evaluates a damped spring released from 0 toward 1, elapsed frames
// after release. It is 0 at elapsed <= 0, non-decreasing, and exactly 1 once
// within springRestThreshold of rest.
func Spring(elapsed, fps float64, cfg SpringConfig) float64 {
	if elapsed <= 0 || fps <= 0 {
		return 0
	}
	if cfg.Stiffness <= 0 || cfg.Mass <= 0 {
		return 1
	}

	cfg = cfg.critical()
	t := elapsed / fps
	omega := math.Sqrt(cfg.Stiffness / cfg.Mass)
	zeta := cfg.Damping / (2 * math.Sqrt(cfg.Stiffness*cfg.Mass))

	// displacement from rest, starting at 1 with zero velocity
	var d float64
	if zeta-1 < 1e-9 {
		d = (1 + omega*t) * math.Exp(-omega*t)
	} else {
		root := math.Sqrt(zeta*zeta - 1)
		r1 := -omega * (zeta - root)
		r2 := -omega * (zeta + root)
		d = (r2*math.Exp(r1*t) - r1*math.Exp(r2*t)) / (r2 - r1)
	}

	if d < springRestThreshold {
		return 1
	}
	return clamp(1-d, 0, 1)
}

// frames until Spring reaches exactly 1, capped at limit
func SettleFrames(fps float64, cfg SpringConfig, limit int) int {
	for f := 0; f < limit; f++ {
		if Spring(float64(f), fps, cfg) == 1 {
			return f
		}
	}
	return limit
}
