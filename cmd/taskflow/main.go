// Command taskflow is a terminal client for the TaskFlow task-management API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskflow/client/internal/infrastructure/credstore"
	"github.com/taskflow/client/internal/infrastructure/telemetry"
	"github.com/taskflow/client/internal/pkg/config"
	"github.com/taskflow/client/pkg/logger"
)

const usageText = `Usage: taskflow [flags] <command> [args]

Commands:
  login -email <email> -password <password>
  logout
  whoami
  refresh
  status
  tasks list [-status <status>] [-search <text>]
  tasks get <id>
  tasks create -title <title> [-description <text>] [-status <status>]
  tasks update <id> [-title <title>] [-description <text>] [-status <status>]
  tasks delete <id>
  tasks status <id>[,<id>...] <status>
  users
  watch [-interval 30s]

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	global := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.StringVar(&cfg.API.BaseURL, "api", cfg.API.BaseURL, "API base URL (TASKFLOW_API_URL)")
	global.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "credential store: bolt, redis, mongo or memory (CREDENTIAL_STORE)")
	global.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (LOG_LEVEL)")
	global.Usage = func() {
		fmt.Fprint(stderr, usageText)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Output:  stderr,
		Service: "taskflow",
	})

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
	}, log)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(sctx)
	}()

	store, closeStore, err := credstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.Warn().Err(err).Msg("close credential store")
		}
	}()

	a, err := newApp(cfg, store, log, stdout)
	if err != nil {
		return err
	}
	return a.dispatch(ctx, global.Arg(0), global.Args()[1:])
}
