// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command oracle checks proof problems.
//
// Usage:
//
//	oracle check [flags] file...
//	oracle smtlib file
//	oracle config
//	oracle version
//
// check exits 0 if every check passed, 1 if some check failed, 2 if some
// check was undecided and none failed, and 3 on errors.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-air/oracle/config"
	"github.com/go-air/oracle/problem"
)

// exit statuses
const (
	exitOK = iota
	exitFail
	exitUndecided
	exitError
)

var version = "devel"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := a.root()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if e := cmd.Execute(); e != nil {
		fmt.Fprintf(stderr, "oracle: %v\n", e)
		return exitError
	}
	return a.status
}

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath  string
	backend     string
	timeout     time.Duration
	logLevel    string
	metricsAddr string
	jobs        int
	output      string
	colorMode   string

	cfg    config.Config
	log    *slog.Logger
	status int
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "oracle",
		Short:         "Check proof obligations with SAT and SMT backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentPreRunE = a.setup
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default $"+config.EnvVar+")")
	pf.StringVar(&a.backend, "backend", "", "backend: sat, z3 or swine")
	pf.DurationVar(&a.timeout, "timeout", 0, "timeout per check (0 for none)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(a.checkCmd(), a.smtlibCmd(), a.configCmd(), a.versionCmd())
	return root
}

// setup loads the configuration and applies flags over it.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, e := config.Load(a.configPath)
	if e != nil {
		return e
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.backend
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("jobs") {
		cfg.Jobs = a.jobs
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}
	if e := cfg.Validate(); e != nil {
		return e
	}
	l, e := cfg.Logger(a.stderr)
	if e != nil {
		return e
	}
	a.cfg, a.log = cfg, l
	return nil
}

func (a *app) smtlibCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smtlib file",
		Short: "Print the assertions of a problem as SMT-LIB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, e := a.load(args[0])
			if e != nil {
				return e
			}
			return problem.Script(p, a.stdout)
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cfg.Write(a.stdout)
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "oracle %s %s/%s %s\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}
