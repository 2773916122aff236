// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-air/oracle/problem"
)

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check file...",
		Short: "Run the checks of problem files",
		Long: `Run the checks of problem files, "-" for stdin.  Files ending in .cnf
or .icnf are read as DIMACS, where a Counterexample means satisfiable.
Files ending in .gz or .bz2 are decompressed.  Files are checked
concurrently, each on its own oracle.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.check,
	}
	f := cmd.Flags()
	f.IntVarP(&a.jobs, "jobs", "j", 1, "number of files checked concurrently")
	f.StringVar(&a.metricsAddr, "metrics-addr", "", "address to serve metrics and profiles while checking (eg :6060)")
	f.StringVarP(&a.output, "output", "o", "text", "output format: text or yaml")
	f.StringVar(&a.colorMode, "color", "auto", "color verdicts: auto, always or never")
	return cmd
}

// fileResult is the outcome of checking one file.
type fileResult struct {
	File   string          `yaml:"file"`
	Report *problem.Report `yaml:"report,omitempty"`
	Error  string          `yaml:"error,omitempty"`
	err    error
}

// exitStatus maps the worst status of the results to an exit status.
func exitStatus(results []fileResult) int {
	worst := problem.Pass
	for i := range results {
		r := &results[i]
		if r.err != nil {
			return exitError
		}
		worst = max(worst, r.Report.Status())
	}
	switch worst {
	case problem.Fail:
		return exitFail
	case problem.Undecided:
		return exitUndecided
	}
	return exitOK
}

func (a *app) check(cmd *cobra.Command, files []string) error {
	if a.output != "text" && a.output != "yaml" {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	pr, e := a.printer()
	if e != nil {
		return e
	}
	kind, e := a.cfg.Kind()
	if e != nil {
		return e
	}
	stop, e := a.serveMetrics()
	if e != nil {
		return e
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Jobs)
	results := make([]fileResult, len(files))
	start := time.Now()
	for i, f := range files {
		g.Go(func() error {
			res := &results[i]
			res.File = f
			if res.err = ctx.Err(); res.err != nil {
				return nil
			}
			log := a.log.With(slog.String("file", f))
			p, e := a.load(f)
			if e != nil {
				res.err = e
				return nil
			}
			res.Report, res.err = problem.Run(p, kind, a.cfg.Options(log)...)
			log.Info("checked", slog.Duration("elapsed", time.Since(start)), slog.Any("error", res.err))
			return nil
		})
	}
	g.Wait()

	for i := range results {
		r := &results[i]
		if r.err != nil {
			r.Error = r.err.Error()
		}
	}
	a.status = exitStatus(results)
	if a.output == "yaml" {
		return writeYAML(a.stdout, results)
	}
	for i := range results {
		pr.file(&results[i])
	}
	return nil
}

// serveMetrics serves metrics and profiles on the configured address
// until stop is called.
func (a *app) serveMetrics() (stop func(), e error) {
	if a.cfg.MetricsAddr == "" {
		return func() {}, nil
	}
	ln, e := net.Listen("tcp", a.cfg.MetricsAddr)
	if e != nil {
		return nil, e
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	srv := &http.Server{Handler: mux}
	go func() {
		if e := srv.Serve(ln); e != nil && !errors.Is(e, http.ErrServerClosed) {
			a.log.Error("metrics server", slog.Any("error", e))
		}
	}()
	a.log.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return func() { srv.Close() }, nil
}
