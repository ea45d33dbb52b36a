// Package cli implements the langextract command line on top of cobra.
//
// Every command prints the service response as indented JSON on stdout and
// logs to stderr, so output can be piped into jq.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/langextract-client/internal/app"
	"github.com/samvad-hq/langextract-client/internal/config"
	"github.com/samvad-hq/langextract-client/internal/logger"
	"github.com/spf13/cobra"
)

const cliName = "langextract"

// GlobalOptions holds options that are common to all commands.
type GlobalOptions struct {
	// BaseURL overrides LANGEXTRACT_BASE_URL.
	BaseURL string
	// APIKey overrides LANGEXTRACT_API_KEY.
	APIKey string
	// LogLevel overrides LANGEXTRACT_LOG_LEVEL.
	LogLevel string

	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
}

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&GlobalOptions{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.Load,
	})
}

func newRootCommand(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   cliName,
		Short: "Client for the langextract extraction service",
		Long: `langextract talks to a running extraction service over HTTP.

Configuration comes from LANGEXTRACT_* environment variables or a .env file;
flags override both.`,
		SilenceUsage: true,
	}
	cmd.SetIn(opts.stdin)
	cmd.SetOut(opts.stdout)
	cmd.SetErr(opts.stderr)

	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "extraction service URL")
	cmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", "", "bearer token sent with every request")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		newHealthCommand(opts),
		newWorkflowCommand(opts),
		newInferSchemaCommand(opts),
		newExtractCommand(opts),
		newJobCommand(opts),
		newJobsCommand(opts),
		newValidateCommand(opts),
	)
	return cmd
}

// withRunner loads config, applies flag overrides and hands a ready Runner to fn.
func (o *GlobalOptions) withRunner(ctx context.Context, fn func(*app.Runner) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	log, err := logger.InitWithWriter(cfg, o.stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log.DebugObj("config loaded", "config", cfg.Redacted())

	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := runner.Close(); cerr != nil {
			log.ErrorObj("runner close failed", "error", cerr.Error())
		}
	}()
	return fn(runner)
}

func (o *GlobalOptions) printJSON(v any) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadBodyFlag reads the -f body file, requiring one.
func (o *GlobalOptions) loadBodyFlag(path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("a request body is required (-f FILE, or -f - for stdin)")
	}
	return app.LoadBody(path, o.stdin)
}
