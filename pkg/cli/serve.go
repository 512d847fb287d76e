package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/taproom/pkg/cli/config"
	httpctrl "github.com/secmon-lab/taproom/pkg/controller/http"
	"github.com/secmon-lab/taproom/pkg/service/metrics"
	"github.com/secmon-lab/taproom/pkg/usecase"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var secureCookie bool
	var enableMetrics bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var sourceCfg config.Source

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":3000",
			Sources:     cli.EnvVars("TAPROOM_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Mark filter memory cookies as Secure",
			Sources:     cli.EnvVars("TAPROOM_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Serve Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("TAPROOM_METRICS"),
			Destination: &enableMetrics,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sourceCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			var collector *metrics.Collector
			if enableMetrics {
				collector = metrics.New()
			}

			uc := usecase.New(repo, append(useCaseOptions(app, &sourceCfg), usecase.WithMetrics(collector))...)

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc.Beer,
					httpctrl.WithMetrics(collector),
					httpctrl.WithSecureCookie(secureCookie),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"default_count", uc.Beer.DefaultCount(),
					"max_count", uc.Beer.MaxCount(),
					"metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}

// useCaseOptions applies the source and batch size settings shared by the
// serve, ingest and fetch commands
func useCaseOptions(app *config.AppConfig, sourceCfg *config.Source) []usecase.Option {
	return []usecase.Option{
		usecase.WithSource(sourceCfg.Configure(app)),
		usecase.WithDefaultIngestCount(app.Source.DefaultCount),
		usecase.WithMaxIngestCount(app.Source.MaxCount),
	}
}
