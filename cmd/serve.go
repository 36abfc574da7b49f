package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coursefaq/config"
	"coursefaq/controllers"
	"coursefaq/router"
	"coursefaq/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP API",
		Example: "coursefaq serve --config ./config",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !opts.debug && !cfg.App.Debug {
				gin.SetMode(gin.ReleaseMode)
			}

			qa, err := pipelineProvider(cfg, logger)
			if err != nil {
				return err
			}

			res, err := config.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := res.Close(); err != nil {
					logger.Warn("close resources", zap.Error(err))
				}
			}()

			engine := router.SetupRouter(router.Deps{
				QA:       qa,
				Feedback: feedbackRecorder(res, logger),
				Logger:   logger,
			})

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg.App.Port, engine, logger)
		},
	}
}

// feedbackRecorder returns nil when Redis is not configured, which leaves the
// feedback routes unregistered.
func feedbackRecorder(res *config.Resources, logger *zap.Logger) controllers.FeedbackRecorder {
	if res.Redis == nil {
		return nil
	}
	var store services.FeedbackStore
	if res.DB != nil {
		store = services.NewGormFeedbackStore(res.DB)
	}
	var publisher services.FeedbackPublisher
	if res.RabbitChannel != nil {
		publisher = services.NewRabbitPublisher(res.RabbitChannel, res.Queue)
	}
	return services.NewFeedbackService(services.NewRedisCounter(res.Redis), store, publisher, logger)
}

func runServer(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
