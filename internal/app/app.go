package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/five82/gdview/internal/config"
	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/prefs"
	"github.com/five82/gdview/internal/state"
	"github.com/five82/gdview/internal/supervisor"
	"github.com/five82/gdview/internal/ui"
	"github.com/five82/gdview/internal/viewer"
)

// Options configure the gdview application. Empty fields keep the values
// from the config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/gdview/prefs.toml
	Host       string
	Token      string
	UsePush    *bool
}

// Run boots the gdview TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	if err := configureLogging(&cfg); err != nil {
		return err
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := httpgd.NewClient(cfg.Host, cfg.Token)
	if err != nil {
		return fmt.Errorf("init httpgd client: %w", err)
	}
	glog.Infof("[app] gdview starting host=%s push=%t", client.BaseURL(), cfg.UsePush)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sup := supervisor.Start(ctx, client, supervisorConfig(cfg), &state.Store{})
	sup.Open()
	defer func() {
		sup.Close()
		cancel()
		<-sup.Done()
		glog.Infof("[app] gdview stopped")
	}()

	err = ui.Run(ui.Options{
		Context:    ctx,
		Supervisor: sup,
		Viewer:     viewer.New(client),
		Config:     &cfg,
		ThemeName:  userPrefs.Theme,
		Zoom:       userPrefs.Zoom,
		PrefsPath:  opts.PrefsPath,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func applyOverrides(cfg config.Config, opts Options) config.Config {
	if host := strings.TrimSpace(opts.Host); host != "" {
		cfg.Host = host
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		cfg.Token = token
	}
	if opts.UsePush != nil {
		cfg.UsePush = *opts.UsePush
	}
	return cfg
}

func supervisorConfig(cfg config.Config) supervisor.Config {
	return supervisor.Config{
		UsePush:         cfg.UsePush,
		FastInterval:    cfg.FastPoll,
		SlowInterval:    cfg.SlowPoll,
		UpgradeCooldown: cfg.UpgradeCooldown,
	}
}

// configureLogging points glog at the configured log directory unless
// -log_dir was given, in which case the config follows the flag so the log
// view tails the right file.
func configureLogging(cfg *config.Config) error {
	f := flag.Lookup("log_dir")
	if f == nil {
		return nil
	}
	if dir := strings.TrimSpace(f.Value.String()); dir != "" {
		cfg.LogDir = dir
		return nil
	}
	if err := cfg.EnsureLogDir(); err != nil {
		return err
	}
	if err := flag.Set("log_dir", cfg.LogDir); err != nil {
		return fmt.Errorf("set log_dir: %w", err)
	}
	return nil
}
