package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"wikiqa/internal/config"
	"wikiqa/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.AppConfig
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		var (
			cfg *config.AppConfig
			err error
		)
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			cfg, err = config.Load(path)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			cfg.Logging.Level = level
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the process logger. Interactive commands must not write logs to
// the terminal, so they fall back to a log file.
func (c *commandContext) logger(interactive bool) *log.Logger {
	cfg := c.config.Logging
	if interactive && cfg.File == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return logging.Nop()
		}
		cfg.File = filepath.Join(dir, "wikiqa", "wikiqa.log")
	}
	return logging.New(cfg)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "wikiqa",
		Short:         "Ask questions about a wiki article",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newChatCommand(ctx))
	rootCmd.AddCommand(newAskCommand(ctx))
	rootCmd.AddCommand(newSummarizeCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}
