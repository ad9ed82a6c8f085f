// Command recipes browses and edits the recipe book and prints grocery
// lists from the terminal, against the backend configured in the
// environment.
package main

import (
	"context"
	"os"

	"recipehub/internal/backend"
	"recipehub/internal/cli"
	"recipehub/internal/log"
	"recipehub/internal/services"
)

func main() {
	cli.LoadEnvFile()

	root := newRootCmd(openConfiguredStore)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openConfiguredStore builds the backend named by DATA_BACKEND. The CLI logs
// to stderr at warn level so command output stays clean.
func openConfiguredStore(ctx context.Context) (services.CatalogStore, *log.Logger, func() error, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel("warn")
	if cfg.LogLevel == "debug" {
		logCfg.Level = log.ParseLevel("debug")
	}
	logCfg.Component = log.ComponentCLI
	logCfg.Output = os.Stderr
	logger := log.New(logCfg)
	log.SetDefault(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	result, err := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend)).
		CreateBackend(ctx, backendConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	return result.Backend, logger, result.Close, nil
}
