package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coursefaq/config"
	"coursefaq/services"
)

func newConsumeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Persist queued answer feedback into MySQL",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			res, err := config.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := res.Close(); err != nil {
					logger.Warn("close resources", zap.Error(err))
				}
			}()
			if res.RabbitChannel == nil || res.DB == nil {
				return errors.New("consume needs both rabbitmq.url and database.dsn")
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			consumer := services.NewFeedbackConsumer(res.RabbitChannel, res.Queue, services.NewGormFeedbackStore(res.DB), logger)
			return consumer.Run(ctx)
		},
	}
}
