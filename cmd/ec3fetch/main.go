// Command ec3fetch reads EPD records from the EC3 API and prints them as JSON.
//
//	ec3fetch get ec3y49fr
//	ec3fetch get ec3y49fr ec3zzn4a --workers 2
//	ec3fetch list --query plant_or_group__owned_by__name__like=BREX --fields id,open_xpd_uuid,name
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/RassulYunussov/ec3client"
	"github.com/RassulYunussov/ec3client/internal/config"
	"github.com/RassulYunussov/ec3client/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, extra ...ec3client.Option) error {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(extra...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}

// rootOptions holds the flags shared by every subcommand
type rootOptions struct {
	ConfigFile string
	EnvFile    string
	Creds      string
	Workers    int

	extra []ec3client.Option
}

// session is what a subcommand needs after configuration has been loaded
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	client ec3client.Client
}

func newRootCommand(extra ...ec3client.Option) *cobra.Command {
	opts := &rootOptions{extra: extra}

	cmd := &cobra.Command{
		Use:   "ec3fetch",
		Short: "Fetch EPD records from the EC3 API",
		Long: `Fetches EPD records from the EC3 API and prints them as indented JSON.

The API key is resolved from the request host: buildingtransparency.org uses
EC3_API_KEY, <instance>.buildingtransparency.org uses EC3_API_KEY_<INSTANCE>.
Use --creds to name the variable explicitly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVarP(&opts.EnvFile, "env", "e", "", "dotenv file with API keys")
	cmd.PersistentFlags().StringVar(&opts.Creds, "creds", "", "credential name overriding host based resolution")
	cmd.PersistentFlags().IntVarP(&opts.Workers, "workers", "w", 0, "concurrent requests, defaults to batch.workers")

	cmd.AddCommand(
		newGetCommand(opts),
		newURLCommand(opts),
		newListCommand(opts),
	)
	return cmd
}

func (o *rootOptions) open() (*session, error) {
	var loadOpts []config.Option
	if o.ConfigFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.ConfigFile))
	}
	if o.EnvFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(o.EnvFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	return &session{cfg: cfg, log: log, client: cfg.NewClient(log, o.extra...)}, nil
}

func (o *rootOptions) workers(cfg *config.Config) int {
	if o.Workers > 0 {
		return o.Workers
	}
	return cfg.Batch.Workers
}
