package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/app"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/config"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront", Output: os.Stderr})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, &runtime{
		stdout: os.Stdout,
		stderr: os.Stderr,
		open:   openFromEnv(os.Stderr),
	}, os.Args[1:])
	stop()
	os.Exit(code)
}

// openFromEnv loads configuration from the environment and builds the storefront.
// Logs go to stderr so stdout stays readable.
func openFromEnv(stderr io.Writer) func(ctx context.Context) (*app.App, error) {
	return func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid configuration")
		}
		logg := logger.New(logger.Options{
			ServiceName: "storefront",
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
			Output:      stderr,
		})
		return app.New(ctx, cfg, app.Options{Logger: logg})
	}
}
