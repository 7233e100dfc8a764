package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/flickr-client/internal/config"
	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/flickr"
	"github.com/Sternrassler/flickr-client/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the per-invocation state shared by the subcommands.
type app struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	configFile string
	v          *viper.Viper
	cfg        *config.Config
	logger     zerolog.Logger

	client *client.Client
	res    *config.Resources
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, err: errOut}

	root := &cobra.Command{
		Use:   "flickr",
		Short: "Flickr API command-line client",
		Long: `A command-line client for the Flickr REST API.

Credentials and backends are read from $HOME/.flickr/config.yml, FLICKR_*
environment variables and flags, in increasing order of precedence.`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.load(cmd) },
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.close() },
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default is $HOME/.flickr/config.yml)")
	flags.StringP("output", "o", outputTable, "output format (table, json, yaml)")
	flags.String("cache", "", "cache backend (none, memory, file, redis, sql, postgres, nats)")
	flags.String("proxy-base-url", "", "send requests to this services root instead of api.flickr.com")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newAuthCommand(a),
		newCallCommand(a),
		newPhotosCommand(a),
		newSearchCommand(a),
		newUploadCommand(a),
		newShortURLCommand(a),
	)
	return root
}

// load reads the configuration; credentials are checked only once a
// command needs the API.
func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	v.SetDefault("log_level", string(logging.LevelWarn))

	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"output":         "output",
		"cache_backend":  "cache",
		"proxy_base_url": "proxy-base-url",
		"log_level":      "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging()
	logCfg.Output = a.err
	a.logger = logging.Setup(logCfg)
	a.v = v
	a.cfg = cfg
	return nil
}

func (a *app) flickrClient(ctx context.Context) (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	c, res, err := a.cfg.NewClient(ctx, &a.logger)
	if err != nil {
		return nil, err
	}
	a.client, a.res = c, res
	return c, nil
}

func (a *app) flickr(ctx context.Context) (*flickr.Flickr, error) {
	c, err := a.flickrClient(ctx)
	if err != nil {
		return nil, err
	}
	return flickr.New(c), nil
}

func (a *app) close() {
	if a.res != nil {
		if err := a.res.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Closing backends failed")
		}
		a.res = nil
	}
	a.client = nil
}

func (a *app) outputFormat() string {
	if a.v == nil {
		return outputTable
	}
	return a.v.GetString("output")
}
