package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/cli/config"
	controller "github.com/m-mizutani/drover/pkg/controller/http"
	"github.com/m-mizutani/drover/pkg/controller/queue"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/drover/pkg/utils/async"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		storeCfg     config.ConfigStore
		firestoreCfg config.Firestore
		sentryCfg    config.Sentry
		queueCfg     config.Queue
	)

	flags := serverCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, queueCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start webhook HTTP server and event consumer",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if !storeCfg.Configured() {
				return goerr.New("either mapping-file or mapping-bucket is required")
			}

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			logger.Info("Starting drover server",
				slog.String("addr", serverCfg.Addr),
				slog.String("queue_topic", queueCfg.Topic),
			)

			loader, err := storeCfg.Loader(ctx)
			if err != nil {
				return err
			}
			mappingCfg, err := loader.Load(ctx)
			if err != nil {
				return err
			}

			dispatcher, err := githubCfg.Dispatcher()
			if err != nil {
				return err
			}

			var ucOpts []usecase.Option
			if firestoreCfg.Enabled() {
				recorder, err := firestoreCfg.Recorder(ctx)
				if err != nil {
					return err
				}
				ucOpts = append(ucOpts, usecase.WithRecorder(recorder))
			}
			if queueCfg.FailOnError {
				ucOpts = append(ucOpts, usecase.WithFailOnError())
			}
			eventUC := usecase.NewEvent(mappingCfg, dispatcher, ucOpts...)

			pubSub := gochannel.NewGoChannel(
				gochannel.Config{OutputChannelBuffer: queueCfg.Buffer},
				watermill.NopLogger{},
			)

			var consumerOpts []queue.Option
			if queueCfg.FailOnError {
				consumerOpts = append(consumerOpts, queue.WithFailOnError())
			}
			consumer := queue.NewConsumer(pubSub, eventUC, queueCfg.Topic, consumerOpts...)

			// The consumer drains until the queue is closed on shutdown
			async.Dispatch(ctx, consumer.Run)

			server, err := controller.NewServer(
				ctx,
				pubSub,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithTopic(queueCfg.Topic),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown: stop accepting webhooks, then close the queue
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			if err := pubSub.Close(); err != nil {
				logger.Warn("Failed to close event queue", slog.Any("error", err))
			}
			sentry.Flush(2 * time.Second)

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
