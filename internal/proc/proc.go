// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package proc runs external solver executables.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// ErrNotInstalled is returned when an executable cannot be found.
var ErrNotInstalled = errors.New("executable not found")

// Result is the outcome of a completed run.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Dur      time.Duration
	UDur     time.Duration
	SDur     time.Duration
}

// Runner runs a command to completion.
//
// A non-zero exit status is not an error: it is reported in the Result.
// Errors are reserved for failures to launch or to collect the command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// Exec runs commands as local processes.
type Exec struct {
	Logger *slog.Logger
}

// Run implements Runner.
func (x *Exec) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	path, e := exec.LookPath(name)
	if e != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotInstalled, name, e)
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logger(x.Logger).Debug("running command",
		slog.String("command", path),
		slog.Any("args", args))
	start := time.Now()
	e = cmd.Run()
	res := &Result{Dur: time.Since(start)}
	if e != nil {
		var exitErr *exec.ExitError
		if !errors.As(e, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", name, e)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		res.UDur = cmd.ProcessState.UserTime()
		res.SDur = cmd.ProcessState.SystemTime()
	}
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	return res, nil
}

// Proc is a running process driven through its standard input and
// output.
type Proc struct {
	Stdin  io.WriteCloser
	Stdout io.Reader

	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr *syncBuffer
	once   sync.Once
	err    error
}

// Start launches name with piped standard input and output.  Standard
// error is collected and available through Stderr.
func Start(name string, args ...string) (*Proc, error) {
	path, e := exec.LookPath(name)
	if e != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotInstalled, name, e)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Proc{
		cmd:    exec.CommandContext(ctx, path, args...),
		cancel: cancel,
		stderr: &syncBuffer{}}
	p.cmd.Stderr = p.stderr
	if p.Stdin, e = p.cmd.StdinPipe(); e != nil {
		cancel()
		return nil, fmt.Errorf("stdin pipe: %w", e)
	}
	if p.Stdout, e = p.cmd.StdoutPipe(); e != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", e)
	}
	if e := p.cmd.Start(); e != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", name, e)
	}
	return p, nil
}

// Stderr returns what the process wrote to standard error so far.
func (p *Proc) Stderr() string {
	return p.stderr.String()
}

// Close closes standard input and waits for the process to exit,
// killing it if it does not exit within grace.
func (p *Proc) Close(grace time.Duration) error {
	p.once.Do(func() {
		p.Stdin.Close()
		done := make(chan error, 1)
		go func() { done <- p.cmd.Wait() }()
		select {
		case e := <-done:
			p.err = e
		case <-time.After(grace):
			p.cancel()
			<-done
		}
		p.cancel()
	})
	return p.err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
