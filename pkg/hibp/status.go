// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type status struct {
	requests         uint64
	failures         uint64
	cacheHits        uint64
	cloudflareHits   uint64
	cloudflareMisses uint64
	requestTimeTotal uint64
	start            time.Time
}

func newStatus() *status {
	return &status{start: time.Now()}
}

func (s *status) CacheHit() {
	atomic.AddUint64(&s.cacheHits, 1)
}

func (s *status) RequestFailed() {
	atomic.AddUint64(&s.failures, 1)
}

func (s *status) RequestComplete(res *http.Response, millis int64) {
	atomic.AddUint64(&s.requestTimeTotal, uint64(millis))
	atomic.AddUint64(&s.requests, 1)

	if cacheHit := res.Header.Get("CF-Cache-Status"); cacheHit == "HIT" {
		atomic.AddUint64(&s.cloudflareHits, 1)
	} else {
		atomic.AddUint64(&s.cloudflareMisses, 1)
	}
}

// Stats summarizes the range lookups of a Checker.
type Stats struct {
	Requests         uint64
	Failures         uint64
	CacheHits        uint64
	CloudflareHits   uint64
	CloudflareMisses uint64
	// AverageMillis is the mean response time of successful requests.
	AverageMillis float64
	Elapsed       time.Duration
}

func (s *status) Snapshot() Stats {
	st := Stats{
		Requests:         atomic.LoadUint64(&s.requests),
		Failures:         atomic.LoadUint64(&s.failures),
		CacheHits:        atomic.LoadUint64(&s.cacheHits),
		CloudflareHits:   atomic.LoadUint64(&s.cloudflareHits),
		CloudflareMisses: atomic.LoadUint64(&s.cloudflareMisses),
		Elapsed:          time.Since(s.start),
	}

	if st.Requests > 0 {
		st.AverageMillis = float64(atomic.LoadUint64(&s.requestTimeTotal)) / float64(st.Requests)
	}

	return st
}

func (st Stats) String() string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d range requests (%d failed, %d served from cache), average response time %.2f ms, cloudflare cache hits: %d, misses: %d",
		st.Requests, st.Failures, st.CacheHits, st.AverageMillis, st.CloudflareHits, st.CloudflareMisses)
}
