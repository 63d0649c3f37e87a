package commands

import (
	"context"
	"errors"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"ohttpc/internal/app"
)

var errMissingArgs = errors.New("requires <url> and <config> arguments, or url and key_config in --settings")

type rootOptions struct {
	settings string
	envFile  string
	flags    app.Config
}

// Execute runs the root command through fang.
func Execute() error {
	root := NewRootCommand()
	return fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versioninfo.Short()),
		fang.WithErrorHandler(errorHandler(root)),
	)
}

// NewRootCommand builds the ohttpc command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{flags: app.DefaultConfig()})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ohttpc <url> <config>",
		Short: "Send replicated Oblivious HTTP requests through a relay",
		Long: `ohttpc encapsulates one HTTP request under a gateway's key configuration and
sends it to a relay as many times as asked, a bounded number at a time. Every
replica is encapsulated afresh, so identical requests are unlinkable on the
wire. Each reply is reported as it completes; a failed replica never stops
the others.`,
		Example: `  # Send one request read from stdin
  printf 'GET https://example.com/ HTTP/1.1\r\n\r\n' | ohttpc https://relay.example/ 01002031...

  # Send 100 replicas, 10 at a time, from a binary HTTP file
  ohttpc -b -i req.bin -r 100 -c 10 https://relay.example/ 01002031...`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			cfg.Stdin = cmd.InOrStdin()
			cfg.Stdout = cmd.OutOrStdout()
			cfg.Stderr = cmd.ErrOrStderr()
			cfg.Environ = os.Environ()
			return app.New(cfg).Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.flags.Input, "input", "i", "", "request file (default standard input)")
	f.StringVarP(&opts.flags.Output, "output", "o", "", "response output file (reserved, not written)")
	f.BoolVarP(&opts.flags.Binary, "binary", "b", false, "read binary HTTP instead of textual HTTP")
	f.BoolVarP(&opts.flags.Indefinite, "indefinite", "n", false, "indefinite-length framing (reserved, requests are sent known-length)")
	f.IntVarP(&opts.flags.Concurrency, "concurrency", "c", opts.flags.Concurrency, "maximum replicas in flight")
	f.IntVarP(&opts.flags.Requests, "requests", "r", opts.flags.Requests, "number of replicas to send")
	f.StringVar(&opts.flags.Trust, "trust", "", "PEM file with an additional trust root")
	f.DurationVar(&opts.flags.Timeout, "timeout", 0, "per-request timeout (0 for none)")
	f.BoolVar(&opts.flags.HTTP3, "http3", false, "use HTTP/3 to reach the relay")
	f.IntVar(&opts.flags.Retries, "retries", 0, "retries per replica on transient transport errors")
	f.DurationVar(&opts.flags.RetryBaseDelay, "retry-base-delay", 0, "initial retry backoff (default 200ms)")
	f.StringVar(&opts.flags.LogLevel, "log-level", opts.flags.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&opts.flags.LogFormat, "log-format", opts.flags.LogFormat, "log format (text, json)")
	f.StringVar(&opts.flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	f.StringVar(&opts.flags.SummaryFile, "summary-file", "", "write a JSON batch summary to this file")
	f.StringVar(&opts.settings, "settings", "", "TOML settings file")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading OHTTPC_* variables")

	return cmd
}

// resolveConfig layers defaults, settings file, environment, positional
// arguments and explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *rootOptions, args []string) (app.Config, error) {
	cfg := app.DefaultConfig()

	if opts.settings != "" {
		s, err := app.LoadSettings(opts.settings)
		if err != nil {
			return app.Config{}, err
		}
		if err := s.Apply(&cfg); err != nil {
			return app.Config{}, err
		}
	}
	if err := app.ApplyEnv(&cfg, opts.envFile); err != nil {
		return app.Config{}, err
	}

	if len(args) > 0 {
		cfg.URL = args[0]
	}
	if len(args) > 1 {
		cfg.KeyConfig = args[1]
	}
	if cfg.URL == "" || cfg.KeyConfig == "" {
		return app.Config{}, errMissingArgs
	}

	changed := cmd.Flags().Changed
	fl := opts.flags
	if changed("input") {
		cfg.Input = fl.Input
	}
	if changed("output") {
		cfg.Output = fl.Output
	}
	if changed("binary") {
		cfg.Binary = fl.Binary
	}
	if changed("indefinite") {
		cfg.Indefinite = fl.Indefinite
	}
	if changed("concurrency") {
		cfg.Concurrency = fl.Concurrency
	}
	if changed("requests") {
		cfg.Requests = fl.Requests
	}
	if changed("trust") {
		cfg.Trust = fl.Trust
	}
	if changed("timeout") {
		cfg.Timeout = fl.Timeout
	}
	if changed("http3") {
		cfg.HTTP3 = fl.HTTP3
	}
	if changed("retries") {
		cfg.Retries = fl.Retries
	}
	if changed("retry-base-delay") {
		cfg.RetryBaseDelay = fl.RetryBaseDelay
	}
	if changed("log-level") {
		cfg.LogLevel = fl.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = fl.LogFormat
	}
	if changed("metrics-file") {
		cfg.MetricsFile = fl.MetricsFile
	}
	if changed("summary-file") {
		cfg.SummaryFile = fl.SummaryFile
	}
	return cfg, nil
}
