package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
)

type commandKey struct{}

// app carries state shared by subcommands once the root pre-run has loaded it.
type app struct {
	envFile string
	asJSON  bool

	cfg appConfig
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tutor",
		Short:         "Assemble retrieval-augmented hint prompts for a math tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load environment variables from this dotfile (must exist)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print machine readable JSON")

	root.AddCommand(
		newHintCmd(a),
		newTemplatesCmd(a),
		newChatsCmd(a),
		newCheckCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "tutor"),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextValue("command", commandKey{}),
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	a.log = logger.New(opts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, commandKey{}, strings.TrimPrefix(cmd.CommandPath(), "tutor ")))
	return nil
}

// requireAPIKey fails early with a readable message when the key is missing.
func (a *app) requireAPIKey() error {
	if a.cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return nil
}
