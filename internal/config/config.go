// Package config loads search-limit overrides from a TOML file, so a
// command-line caller can tune max_tries/max_flips/noise/timeout without
// recompiling.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/catsat/catsat/internal/sls"
)

// Limits mirrors sls.Limits with TOML-friendly field names and a
// millisecond timeout (TOML has no native duration type).
type Limits struct {
	MaxTries  int     `toml:"max_tries"`
	MaxFlips  int     `toml:"max_flips"`
	Noise     float64 `toml:"noise"`
	TimeoutMS int     `toml:"timeout_ms"`
}

// Load reads a TOML limits file at path. Any field absent from the file
// keeps its zero value; callers should overlay this onto sls.DefaultLimits
// rather than assume Load alone produces a complete Limits.
func Load(path string) (Limits, error) {
	var lim Limits
	if _, err := toml.DecodeFile(path, &lim); err != nil {
		return Limits{}, fmt.Errorf("config: loading %s: %w", path, err)
	}
	return lim, nil
}

// Apply overlays non-zero fields of lim onto base and returns the result.
func (lim Limits) Apply(base sls.Limits) sls.Limits {
	out := base
	if lim.MaxTries != 0 {
		out.MaxTries = lim.MaxTries
	}
	if lim.MaxFlips != 0 {
		out.MaxFlips = lim.MaxFlips
	}
	if lim.Noise != 0 {
		out.Noise = lim.Noise
	}
	if lim.TimeoutMS != 0 {
		out.Timeout = time.Duration(lim.TimeoutMS) * time.Millisecond
	}
	return out
}
