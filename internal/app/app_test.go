package app

import (
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/gdview/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	base := config.Config{Host: "127.0.0.1:8288", Token: "file", UsePush: true}

	got := applyOverrides(base, Options{})
	if got != base {
		t.Fatalf("applyOverrides with empty options = %+v, want %+v", got, base)
	}

	off := false
	got = applyOverrides(base, Options{Host: " example:9 ", Token: "flag", UsePush: &off})
	if got.Host != "example:9" || got.Token != "flag" || got.UsePush {
		t.Fatalf("applyOverrides = %+v, want host/token/push overridden", got)
	}
}

func TestSupervisorConfig(t *testing.T) {
	cfg := config.Config{
		UsePush:         true,
		FastPoll:        250 * time.Millisecond,
		SlowPoll:        3 * time.Second,
		UpgradeCooldown: time.Minute,
	}
	got := supervisorConfig(cfg)
	if !got.UsePush || got.FastInterval != cfg.FastPoll || got.SlowInterval != cfg.SlowPoll || got.UpgradeCooldown != time.Minute {
		t.Fatalf("supervisorConfig = %+v, want fields copied from %+v", got, cfg)
	}
}

func TestConfigureLogging(t *testing.T) {
	f := flag.Lookup("log_dir")
	if f == nil {
		t.Skip("glog log_dir flag not registered")
	}
	prev := f.Value.String()
	t.Cleanup(func() { _ = flag.Set("log_dir", prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	_ = flag.Set("log_dir", "")
	cfg := config.Config{LogDir: dir}
	if err := configureLogging(&cfg); err != nil {
		t.Fatalf("configureLogging returned error: %v", err)
	}
	if got := flag.Lookup("log_dir").Value.String(); got != dir {
		t.Fatalf("log_dir flag = %q, want %q", got, dir)
	}

	other := t.TempDir()
	_ = flag.Set("log_dir", other)
	cfg = config.Config{LogDir: dir}
	if err := configureLogging(&cfg); err != nil {
		t.Fatalf("configureLogging returned error: %v", err)
	}
	if cfg.LogDir != other {
		t.Fatalf("LogDir = %q, want flag value %q", cfg.LogDir, other)
	}
}
