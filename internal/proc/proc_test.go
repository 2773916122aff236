// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package proc

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func needSh(t *testing.T) {
	if _, e := exec.LookPath("sh"); e != nil {
		t.Skip("no sh")
	}
}

func TestExecRun(t *testing.T) {
	needSh(t)
	x := &Exec{}
	res, e := x.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, e)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecNotInstalled(t *testing.T) {
	x := &Exec{}
	_, e := x.Run(context.Background(), "no-such-solver-binary-xyz")
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrNotInstalled))
	assert.True(t, errors.Is(e, exec.ErrNotFound))

	_, e = Start("no-such-solver-binary-xyz")
	assert.True(t, errors.Is(e, ErrNotInstalled))
}

func TestProcPipe(t *testing.T) {
	if _, e := exec.LookPath("cat"); e != nil {
		t.Skip("no cat")
	}
	p, e := Start("cat")
	require.NoError(t, e)
	r := bufio.NewReader(p.Stdout)
	_, e = io.WriteString(p.Stdin, "success\n")
	require.NoError(t, e)
	line, e := r.ReadString('\n')
	require.NoError(t, e)
	assert.Equal(t, "success\n", line)
	assert.NoError(t, p.Close(time.Second))
	assert.NoError(t, p.Close(time.Second))
}
