// Package showroom parses showroom service flags and launches the service.
package showroom

import (
	"context"
	"flag"

	entrypoint "github.com/verisim/verisim/internal/platform/cmd"
	server "github.com/verisim/verisim/internal/services/showroom/app"
)

// Config holds showroom command configuration.
type Config struct {
	Port int `env:"VERISIM_SHOWROOM_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The showroom HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the showroom HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceShowroom, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
