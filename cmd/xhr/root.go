package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frankli0324/go-xhr"
	"github.com/frankli0324/go-xhr/internal/logger"
)

type options struct {
	config          string
	method          string
	data            string
	form            []string
	headers         []string
	timeout         time.Duration
	withCredentials bool
	verbose         bool
	metrics         bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "xhr [flags] URL",
		Short: "Perform one exchange and print the response descriptor as JSON",
		Long: `xhr executes a single request through the XMLHttpRequest style adapter
and prints the settled response descriptor. Rejected exchanges are printed
too and make the command fail.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "config file path")
	f.StringVarP(&opts.method, "request", "X", "", "request method, GET or POST by default")
	f.StringVarP(&opts.data, "data", "d", "", "request entity, @file reads it from a file")
	f.StringArrayVarP(&opts.form, "form", "F", nil, "multipart field name=value, name=@file for files")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Name: value"`)
	f.DurationVar(&opts.timeout, "timeout", 0, "primitive timeout")
	f.BoolVar(&opts.withCredentials, "with-credentials", false, "send and store cookies")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&opts.metrics, "metrics", false, "print exchange metrics to stderr")
	return cmd
}

func run(cmd *cobra.Command, opts *options, url string) error {
	cfg, err := xhr.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if opts.metrics {
		cfg.Metrics = true
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	client, err := xhr.NewClient(cfg, log, reg)
	if err != nil {
		return err
	}

	req, err := buildRequest(opts, url)
	if err != nil {
		return err
	}
	log.Debug("request_built", zap.String("method", req.Method), zap.String("path", req.Path))

	resp, err := client.CtxDo(cmd.Context(), req)
	if resp != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	if opts.metrics {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}
	return err
}

func buildRequest(opts *options, url string) (*xhr.Request, error) {
	req := &xhr.Request{
		Path:    url,
		Method:  strings.ToUpper(opts.method),
		Headers: map[string]string{},
		Mixin:   map[string]interface{}{},
	}
	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q", h)
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if opts.timeout > 0 {
		req.Mixin["timeout"] = opts.timeout
	}
	if opts.withCredentials {
		req.Mixin["withCredentials"] = true
	}

	switch {
	case opts.data != "" && len(opts.form) > 0:
		return nil, errors.New("--data and --form are mutually exclusive")
	case len(opts.form) > 0:
		form, err := buildForm(opts.form)
		if err != nil {
			return nil, err
		}
		req.Entity = form
	case strings.HasPrefix(opts.data, "@"):
		b, err := os.ReadFile(opts.data[1:])
		if err != nil {
			return nil, err
		}
		req.Entity = b
	case opts.data != "":
		req.Entity = opts.data
	}
	return req, nil
}

func buildForm(fields []string) (*xhr.FormData, error) {
	form := xhr.NewFormData()
	for _, field := range fields {
		name, value, ok := strings.Cut(field, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed form field %q", field)
		}
		if !strings.HasPrefix(value, "@") {
			form.Append(name, value)
			continue
		}
		path := value[1:]
		fp, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		err = form.AppendFile(name, path[strings.LastIndexAny(path, `/\`)+1:], fp)
		fp.Close()
		if err != nil {
			return nil, err
		}
	}
	return form, nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
