// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// checksTotal counts proof checks by backend and verdict.
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oracle_checks_total",
		Help: "Total proof checks by backend and verdict",
	}, []string{"backend", "verdict"})

	// checkDuration tracks backend check latency.
	checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oracle_check_duration_seconds",
		Help:    "Backend check duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms to ~2min
	}, []string{"backend"})
)
