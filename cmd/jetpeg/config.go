package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ava12/jetpeg/langdef"
	"github.com/ava12/jetpeg/parser"
	"github.com/ava12/jetpeg/source"
)

const (
	keyConfig      = "config"
	keyLogLevel    = "log-level"
	keyConcurrency = "concurrency"
	keyFormat      = "format"
	keyMetricsAddr = "metrics-addr"
	keyHistoryFile = "history-file"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

type config struct {
	v   *viper.Viper
	log hclog.Logger
	in  io.Reader
}

func newConfig() *config {
	return &config{v: viper.New(), log: hclog.NewNullLogger(), in: os.Stdin}
}

func (c *config) registerFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file, default is .jetpeg.yaml in the current or home directory")
	flags.String(keyLogLevel, "warn", "log level: trace, debug, info, warn, error, or off")
	flags.Int(keyConcurrency, 0, "maximum number of concurrent matches, 0 means no limit")
	flags.String(keyFormat, formatYAML, `output format ("yaml" or "json")`)
	flags.String(keyMetricsAddr, "", "serve Prometheus metrics at this address while running")
	flags.String(keyHistoryFile, ".jetpeg_history", "repl history file")
	for _, key := range []string{keyConfig, keyLogLevel, keyConcurrency, keyFormat, keyMetricsAddr, keyHistoryFile} {
		c.v.BindPFlag(key, flags.Lookup(key))
	}
}

// load reads the config file and environment, then sets up the logger.
func (c *config) load(cmd *cobra.Command) error {
	c.v.SetEnvPrefix("JETPEG")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	file := c.v.GetString(keyConfig)
	if file != "" {
		c.v.SetConfigFile(file)
	} else {
		c.v.SetConfigName(".jetpeg")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, e := os.UserHomeDir(); e == nil {
			c.v.AddConfigPath(home)
		}
	}
	if e := c.v.ReadInConfig(); e != nil {
		var nf viper.ConfigFileNotFoundError
		if file != "" || !errors.As(e, &nf) {
			return fail(errUsage, e)
		}
	}

	levelName := c.v.GetString(keyLogLevel)
	level := hclog.LevelFromString(levelName)
	if level == hclog.NoLevel {
		return failf(errUsage, "unknown log level: %s", levelName)
	}
	c.in = cmd.InOrStdin()
	c.log = hclog.New(&hclog.LoggerOptions{
		Name:   "jetpeg",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	switch f := c.v.GetString(keyFormat); f {
	case formatYAML, formatJSON:
	default:
		return failf(errUsage, "unknown output format: %s", f)
	}

	if c.v.ConfigFileUsed() != "" {
		c.log.Debug("config loaded", "file", c.v.ConfigFileUsed())
	}
	return nil
}

func (c *config) format() string {
	return c.v.GetString(keyFormat)
}

// context returns a context canceled on interrupt.
func (c *config) context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// serveMetrics starts the metrics endpoint if an address is configured.
// It returns nil registerer if metrics are disabled, stop is never nil.
func (c *config) serveMetrics() (reg prometheus.Registerer, stop func(), e error) {
	addr := c.v.GetString(keyMetricsAddr)
	if addr == "" {
		return nil, func() {}, nil
	}

	lis, e := net.Listen("tcp", addr)
	if e != nil {
		return nil, nil, fail(errUsage, e)
	}

	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	srv := &http.Server{Handler: promhttp.HandlerFor(r, promhttp.HandlerOpts{})}
	go srv.Serve(lis)
	c.log.Info("serving metrics", "addr", lis.Addr().String())
	return r, func() { srv.Close() }, nil
}

type grammarOptions struct {
	files      []string
	noOptimize bool
}

func (o *grammarOptions) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringArrayVarP(&o.files, "grammar", "g", nil, "grammar description file, may be repeated")
	cmd.Flags().BoolVar(&o.noOptimize, "no-optimize", false, "compile the grammar as written, without factoring common prefixes")
	if required {
		cmd.MarkFlagRequired("grammar")
	}
}

// compile parses grammar files as a single grammar and compiles it.
func (c *config) compile(o *grammarOptions, reg prometheus.Registerer) (*parser.Parser, error) {
	srcs := make([]*source.Source, len(o.files))
	for i, name := range o.files {
		content, e := loadFile(name, c.in)
		if e != nil {
			return nil, e
		}
		srcs[i], e = makeSource(name, content)
		if e != nil {
			return nil, e
		}
	}

	g, e := langdef.ParseAll(srcs...)
	if e != nil {
		return nil, fail(errGrammar, e)
	}

	opts := []parser.Option{
		parser.WithLogger(c.log),
		parser.WithConcurrency(c.v.GetInt(keyConcurrency)),
	}
	if reg != nil {
		opts = append(opts, parser.WithMetrics(reg))
	}
	if o.noOptimize {
		opts = append(opts, parser.WithoutOptimizer())
	}
	p, e := parser.New(g, opts...)
	if e != nil {
		return nil, fail(errParser, e)
	}
	return p, nil
}

// pickRule returns the named rule or the first rule of the grammar.
func pickRule(p *parser.Parser, name string) (string, error) {
	if name == "" {
		return p.Rules()[0], nil
	}
	if p.Layout(name) == nil {
		return "", failf(errUsage, "unknown rule: %s", name)
	}
	return name, nil
}
