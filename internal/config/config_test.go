package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/catsat/catsat/internal/sls"
)

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.toml")
	contents := "max_tries = 5\nmax_flips = 100\nnoise = 0.3\ntimeout_ms = 2000\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	lim, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if lim.MaxTries != 5 || lim.MaxFlips != 100 || lim.Noise != 0.3 || lim.TimeoutMS != 2000 {
		t.Fatalf("got %+v, want max_tries=5 max_flips=100 noise=0.3 timeout_ms=2000", lim)
	}
}

func TestApplyOverlaysOnlyNonZeroFields(t *testing.T) {
	base := sls.DefaultLimits()
	lim := Limits{MaxTries: 7}
	out := lim.Apply(base)
	if out.MaxTries != 7 {
		t.Fatalf("got MaxTries=%d, want 7", out.MaxTries)
	}
	if out.MaxFlips != base.MaxFlips {
		t.Fatalf("MaxFlips should stay at base default when unset in overlay")
	}
}

func TestApplySetsTimeoutFromMilliseconds(t *testing.T) {
	base := sls.DefaultLimits()
	lim := Limits{TimeoutMS: 1500}
	out := lim.Apply(base)
	if out.Timeout != 1500*time.Millisecond {
		t.Fatalf("got Timeout=%v, want 1.5s", out.Timeout)
	}
}
