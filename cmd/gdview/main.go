package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/five82/gdview/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	// keep glog output off the terminal the TUI owns; -stderrthreshold still overrides
	_ = flag.Set("stderrthreshold", "FATAL")

	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	host := flag.String("host", "", "httpgd server, host:port or http(s)://host:port")
	token := flag.String("token", "", "httpgd access token")
	push := flag.String("push", "", "use the push channel: true or false (default from config)")
	flag.Parse()
	defer glog.Flush()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Host:       *host,
		Token:      *token,
	}
	switch *push {
	case "":
	case "true", "1", "yes":
		v := true
		opts.UsePush = &v
	case "false", "0", "no":
		v := false
		opts.UsePush = &v
	default:
		fmt.Fprintf(os.Stderr, "gdview: invalid -push value %q\n", *push)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		glog.Errorf("gdview: %v", err)
		fmt.Fprintf(os.Stderr, "gdview: %v\n", err)
		return 1
	}
	return 0
}
