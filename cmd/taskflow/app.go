package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
	"github.com/taskflow/client/internal/core/service"
	"github.com/taskflow/client/internal/infrastructure/httpclient"
	"github.com/taskflow/client/internal/pkg/config"
	"github.com/taskflow/client/pkg/logger"
)

var errNotLoggedIn = errors.New("not logged in, run: taskflow login -email <email> -password <password>")

type app struct {
	out         io.Writer
	log         zerolog.Logger
	validate    *validator.Validate
	metricsAddr string

	session *service.SessionProvider
	taskAPI *service.TaskService
	tasks   *service.TaskList
	admin   *service.AdminService
}

func newApp(cfg *config.Config, store ports.CredentialStore, log zerolog.Logger, out io.Writer) (*app, error) {
	var opts []httpclient.Option
	if cfg.API.SharedRefresh {
		opts = append(opts, httpclient.WithSharedRefresh())
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.API.BaseURL,
		Prefix:  cfg.API.Prefix,
		Timeout: cfg.API.Timeout,
	}, store, log, opts...)
	if err != nil {
		return nil, err
	}

	auth := service.NewAuthService(client, store, logger.Component("auth"))
	session := service.NewSessionProvider(auth, logger.Component("session"))
	client.SetObserver(session)
	taskAPI := service.NewTaskService(client)

	return &app{
		out:         out,
		log:         log,
		validate:    validator.New(),
		metricsAddr: cfg.MetricsAddr,
		session:     session,
		taskAPI:     taskAPI,
		tasks:       service.NewTaskList(taskAPI, logger.Component("tasks")),
		admin:       service.NewAdminService(client),
	}, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	a.session.Init(ctx)

	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "refresh":
		return a.refresh(ctx)
	case "status":
		return a.status()
	case "tasks":
		return a.tasksCommand(ctx, args)
	case "users":
		return a.users(ctx)
	case "watch":
		return a.watch(ctx, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var in loginInput
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}

	user, err := a.session.Login(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.DisplayName(), user.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) whoami() error {
	s := a.session.Snapshot()
	if !s.IsAuthenticated() {
		return errNotLoggedIn
	}
	printUser(a.out, s.User)
	return nil
}

func (a *app) refresh(ctx context.Context) error {
	token, err := a.session.RefreshToken(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Access token refreshed, %s\n", expiryText(token))
	return nil
}

func (a *app) status() error {
	s := a.session.Snapshot()
	if !s.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", s.User.DisplayName(), s.User.Email)
	fmt.Fprintf(a.out, "Role: %s (admin: %t)\n", s.User.Role, s.IsAdmin())
	fmt.Fprintf(a.out, "Access token %s\n", expiryText(s.Token))
	return nil
}

func (a *app) users(ctx context.Context) error {
	s := a.session.Snapshot()
	if !s.IsAuthenticated() {
		return errNotLoggedIn
	}
	if !s.IsAdmin() {
		return errors.New("the users command requires the admin role")
	}
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	printUsers(a.out, users)
	return nil
}

// watch refetches the task list on an interval until ctx ends, serving
// Prometheus metrics on METRICS_ADDR when set.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 30*time.Second, "refetch interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrValidation)
	}
	if !a.session.Snapshot().IsAuthenticated() {
		return errNotLoggedIn
	}

	if a.metricsAddr != "" {
		srv := &http.Server{Addr: a.metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error().Err(err).Str("addr", a.metricsAddr).Msg("metrics server")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
		a.log.Info().Str("addr", a.metricsAddr).Msg("serving metrics")
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		if err := a.tasks.Fetch(ctx); err != nil {
			if service.IsAuthExpired(err) || ctx.Err() != nil {
				return err
			}
			a.log.Warn().Err(err).Msg("refetch failed")
		} else {
			printSummary(a.out, time.Now(), a.tasks.Tasks())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
