package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"assistbot/internal/config"
	"assistbot/internal/security"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:          "assistbot",
		Short:        "Telegram assistant bot with chat, search and media handlers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignals(cmd.Context(), *opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default ~/.assistbot/config.yaml).")

	run := &cobra.Command{
		Use:   "run",
		Short: "Start the bot (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSignals(cmd.Context(), *opts)
		},
	}
	run.Flags().BoolVar(&opts.console, "console", false, "Read messages from stdin instead of Telegram.")

	root.AddCommand(run, newSecretCmd(opts), newConfigCmd(opts))
	return root
}

func runWithSignals(parent context.Context, opts runOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runBot(ctx, opts)
}

func checkSecretName(name string) error {
	if !slices.Contains(secretNames, name) {
		return fmt.Errorf("unknown secret %q (want one of %s)", name, strings.Join(secretNames, ", "))
	}
	return nil
}

func openKeyStore(opts *runOptions) (*security.KeyStore, error) {
	loader, err := config.NewLoader(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return security.NewKeyStore(cfg.DataDir, os.Getenv("VAULT_PASSWORD"))
}

func newSecretCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credentials in the OS keyring or encrypted vault",
	}

	set := &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a secret; reference it from config as " + security.SecretPlaceholder,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			ks, err := openKeyStore(opts)
			if err != nil {
				return err
			}
			if err := ks.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a masked secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			ks, err := openKeyStore(opts)
			if err != nil {
				return err
			}
			v, err := ks.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], security.MaskKey(v))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			ks, err := openKeyStore(opts)
			if err != nil {
				return err
			}
			return ks.Delete(args[0])
		},
	}

	cmd.AddCommand(set, get, del)
	return cmd
}

func newConfigCmd(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with defaults and keyring placeholders",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.NewLoader(opts.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(loader.FilePath()); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", loader.FilePath())
			}
			cfg := config.Defaults()
			for _, field := range secretFields(cfg) {
				*field = security.SecretPlaceholder
			}
			if err := loader.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", loader.FilePath())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file.")

	check := &cobra.Command{
		Use:   "check",
		Short: "Load and validate the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok (provider %s, locale %s, journal %s)\n",
				cfg.LLM.Provider, cfg.Bot.Locale, cfg.Journal.Backend)
			return nil
		},
	}

	cmd.AddCommand(initCmd, check)
	return cmd
}
