package cmd

import (
	"Pantry-Planner/cmd/config"
	"Pantry-Planner/internal/utils"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var flagServeMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagServeMigrate, "migrate", true, "Run schema migration before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	db, err := openDB(flagServeMigrate)
	if err != nil {
		return err
	}

	app, err := config.NewApp(db)
	if err != nil {
		return err
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}
