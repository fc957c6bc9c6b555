package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"looseroles/config"
	"looseroles/model"
)

// loadConfig reads the settings at path and installs the default logger at
// the configured level.
func loadConfig(path string) (*config.Loader, *model.Config, error) {
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		switch {
		case errors.Is(err, config.ErrMissingToken):
			return nil, nil, fmt.Errorf("%w: set discord.token in %s or DISCORD_TOKEN in the environment", err, path)
		case errors.Is(err, config.ErrMissingGuild):
			return nil, nil, fmt.Errorf("%w: set discord.guildId in %s or DISCORD_GUILDID in the environment", err, path)
		}
		return nil, nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LevelFromString(cfg.LogLevel),
	})))
	return loader, cfg, nil
}
