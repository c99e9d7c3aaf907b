package service

import (
	"math"
	"sync/atomic"
)

// Stats is a snapshot of in-process extraction counters. Counters reset
// on restart; durable metrics live in Prometheus.
type Stats struct {
	TotalRequests     int64   `json:"total_requests"`
	Successful        int64   `json:"successful"`
	Failed            int64   `json:"failed"`
	AvgProcessingTime float64 `json:"avg_processing_time"` // seconds
}

// statsCounters accumulates request outcomes with atomics so Extract can
// run concurrently without a lock.
type statsCounters struct {
	total       atomic.Int64
	successful  atomic.Int64
	failed      atomic.Int64
	elapsedNano atomic.Int64
}

func (c *statsCounters) requestStarted() {
	c.total.Add(1)
}

func (c *statsCounters) requestFinished(ok bool, elapsedSec float64) {
	if ok {
		c.successful.Add(1)
	} else {
		c.failed.Add(1)
	}
	c.elapsedNano.Add(int64(elapsedSec * 1e9))
}

func (c *statsCounters) snapshot() Stats {
	s := Stats{
		TotalRequests: c.total.Load(),
		Successful:    c.successful.Load(),
		Failed:        c.failed.Load(),
	}
	if done := s.Successful + s.Failed; done > 0 {
		avg := float64(c.elapsedNano.Load()) / 1e9 / float64(done)
		s.AvgProcessingTime = math.Round(avg*1000) / 1000
	}
	return s
}
