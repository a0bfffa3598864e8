package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"tiered-scheduler/api"
	"tiered-scheduler/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scheduler over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, logger, err := setup()
		if err != nil {
			return err
		}
		port := c.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		var st api.Store
		if c.Store.Path != "" {
			s, err := store.New(c.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close()
			st = s
			logger.Info("recording batches", slog.String("path", s.Path()))
		}

		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		api.Register(app, api.NewSchedulerHandlerImpl(c, logger, st))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		listenErr := make(chan error, 1)
		go func() {
			listenErr <- app.Listen(fmt.Sprintf(":%d", port))
		}()
		logger.Info("listening", slog.Int("port", port))

		select {
		case err := <-listenErr:
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			return app.Shutdown()
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides the config file)")
	rootCmd.AddCommand(serveCmd)
}
