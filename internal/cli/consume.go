package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/queue"
)

func newConsumeCmd() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append reservation events from RabbitMQ to a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The consumer only needs the broker URL, so it skips the full
			// config and its required variables.
			if err := godotenv.Load(); err != nil {
				log.Println("config: no .env file found; using process environment")
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := queue.Consume(ctx, config.AMQPURL(), logPath)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&logPath, "log", queue.DefaultLogPath, "file the events are appended to")
	return cmd
}
