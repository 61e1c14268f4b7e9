package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tubecast/internal/config"
	"tubecast/internal/validate"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool
	var interactive bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite && !interactive {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if !interactive {
				if err := config.CreateSample(target); err != nil {
					return fmt.Errorf("create sample config: %w", err)
				}
				fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
				fmt.Fprintln(out, "Fill in the [storage] section (or run 'tubecast config init --interactive') before converting.")
				return nil
			}

			cfg := config.Default()
			if existing, _, exists, err := config.Load(target); err == nil && exists {
				cfg = *existing
			}
			prompt := newTerminalPrompter(cmd.InOrStdin(), out)
			if err := runSetupWizard(&cfg, prompt); err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					fmt.Fprintln(out, "Setup canceled; nothing written")
					return nil
				}
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}
			if err := cfg.Save(target); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for storage and notification settings")
	return cmd
}

func resolveInitTarget(targetPath string) (string, error) {
	target := strings.TrimSpace(targetPath)
	if target == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		target = defaultPath
	} else {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		target = expanded
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory %q: %w", dir, err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); err != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			if err := cfg.RequireStorage(); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// question is one wizard prompt.
type question struct {
	label    string
	current  string
	validate func(string) error
	secret   bool
}

// prompter asks a single question and returns the trimmed answer.
type prompter func(q question) (string, error)

// runSetupWizard fills the storage and notification sections of cfg.
func runSetupWizard(cfg *config.Config, ask prompter) error {
	fields := []struct {
		q   question
		dst *string
	}{
		{question{label: "S3 endpoint", current: cfg.Storage.Endpoint, validate: validate.Endpoint}, &cfg.Storage.Endpoint},
		{question{label: "Public URL", current: cfg.Storage.PublicURL, validate: validate.PublicURL}, &cfg.Storage.PublicURL},
		{question{label: "Bucket", current: cfg.Storage.Bucket, validate: validate.BucketName}, &cfg.Storage.Bucket},
		{question{label: "Access key", current: cfg.Storage.AccessKey, validate: validate.Required}, &cfg.Storage.AccessKey},
		{question{label: "Secret key", current: cfg.Storage.SecretKey, validate: validate.Required, secret: true}, &cfg.Storage.SecretKey},
		{question{label: "Region", current: cfg.Storage.Region, validate: validate.Required}, &cfg.Storage.Region},
		{question{label: "ntfy topic (blank to disable)", current: cfg.Notifications.NtfyTopic}, &cfg.Notifications.NtfyTopic},
	}
	for _, field := range fields {
		answer, err := ask(field.q)
		if err != nil {
			return err
		}
		*field.dst = strings.TrimSpace(answer)
	}
	return nil
}

func newTerminalPrompter(in io.Reader, out io.Writer) prompter {
	return func(q question) (string, error) {
		prompt := promptui.Prompt{
			Label:     q.label,
			Default:   q.current,
			AllowEdit: !q.secret,
			Validate: func(input string) error {
				if q.validate == nil {
					return nil
				}
				return q.validate(strings.TrimSpace(input))
			},
			Stdin:  io.NopCloser(in),
			Stdout: nopWriteCloser{out},
		}
		if q.secret {
			prompt.Mask = '*'
		}
		answer, err := prompt.Run()
		return strings.TrimSpace(answer), err
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
