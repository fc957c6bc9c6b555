package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"looseroles/bot"
	"looseroles/config"
	"looseroles/handlers"
	"looseroles/roles"
	"looseroles/utils/database"

	"github.com/spf13/cobra"
)

const AppName = "looseroles"

// NewRootCmd creates the root command. Without a subcommand it runs the bot.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "LooseRoles - self-assignable Discord roles",
		Long:          "LooseRoles lets server members assign roles to themselves with buttons or emote reactions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd)
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", config.DefaultPath, "path to the settings file")

	cmd.AddCommand(
		NewRunCmd(),
		NewCheckConfigCmd(),
	)
	return cmd
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve role requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd)
		},
	}
}

// NewCheckConfigCmd creates the check-config command.
func NewCheckConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load the settings and stored bindings and print the resulting roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			_, cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			db, err := database.Init(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("error initializing database: %w", err)
			}
			defer db.Close()

			buttons, reactions, report := bot.LoadRegistries(cfg, db)
			out := cmd.OutOrStdout()
			printRegistry(cmd, "Button roles", buttons, report.ButtonErr)
			printRegistry(cmd, "Reaction roles", reactions, report.ReactionErr)
			if report.ButtonErr != nil && report.ReactionErr != nil {
				return errors.New("no usable roles configured")
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}

func printRegistry(cmd *cobra.Command, title string, reg *roles.Registry, loadErr error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d):\n", title, reg.Len())
	for _, e := range reg.Entries() {
		if e.Emoji != "" {
			fmt.Fprintf(out, "  %s -> %d\n", e.Emoji, e.RoleID)
			continue
		}
		fmt.Fprintf(out, "  %d\n", e.RoleID)
	}
	if loadErr != nil {
		fmt.Fprintf(out, "  error: %v\n", loadErr)
	}
}

func runBot(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loader, cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	db, err := database.Init(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}
	defer b.Close()

	handlers.Register(b)
	loader.Watch(b.SetConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting", "version", cmd.Root().Version, "guild_id", cfg.GuildID)
	return b.Run(ctx)
}
