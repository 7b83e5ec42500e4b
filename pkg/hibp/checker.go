// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

const (
	DefaultRangeURL  = "https://api.pwnedpasswords.com/range/"
	DefaultUserAgent = "pwd-strength/1.0"
	DefaultTimeout   = 5 * time.Second

	// PrefixLength is the number of hash characters sent to the range API.
	PrefixLength = 5

	// Upper bound of a range body. Padded responses are around 40 KiB.
	maxRangeBody = 1 << 20
)

var (
	hashPattern   = regexp.MustCompile(`^[a-fA-F\d]{40}$`)
	suffixPattern = regexp.MustCompile(`^[a-fA-F\d]{35}$`)
)

type Options struct {
	// RangeURL is the range endpoint, the hash prefix is appended to it.
	RangeURL  string
	UserAgent string
	// Timeout bounds a whole lookup, retries included.
	Timeout time.Duration
	Retries int
	// Padding asks the service to add decoy entries to every response.
	Padding bool
	// CacheTTL keeps range responses in memory. Zero disables the cache.
	CacheTTL time.Duration
}

// Result of a breach lookup. Count is only set when Breached is true.
type Result struct {
	Breached bool   `json:"breached"`
	Count    uint64 `json:"count,omitempty"`
}

// Checker looks passwords up in the Pwned Passwords corpus using the
// k-anonymity range API: only the first five characters of the SHA1 hash are
// sent, the suffix is matched locally against the returned candidates.
type Checker struct {
	opts  Options
	http  *retryablehttp.Client
	cache *ristretto.Cache
	stat  *status
}

func NewChecker(opts Options) (*Checker, error) {
	if opts.RangeURL == "" {
		opts.RangeURL = DefaultRangeURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if !strings.HasSuffix(opts.RangeURL, "/") {
		opts.RangeURL += "/"
	}

	c := &Checker{
		opts: opts,
		http: initHttpClient(opts),
		stat: newStatus(),
	}

	if opts.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			// One cost unit per range, at most 1024 ranges in memory.
			NumCounters: 10 * 1024,
			MaxCost:     1024,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating range cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

func initHttpClient(opts Options) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = newRetryLogger()
	client.RetryMax = opts.Retries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = opts.Timeout / 4
	// Hand back the last response or error as is, the checker classifies them.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   opts.Timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return client
}

// Close releases the range cache.
func (c *Checker) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// CheckPassword hashes password and looks the hash up. The password itself
// never leaves the process.
func (c *Checker) CheckPassword(ctx context.Context, password string) (Result, error) {
	return c.lookup(ctx, HashPassword(password))
}

// CheckHash looks up an already computed SHA1 hash, in hexadecimal.
func (c *Checker) CheckHash(ctx context.Context, hash string) (Result, error) {
	if !hashPattern.MatchString(hash) {
		return Result{}, ErrInvalidHash
	}

	return c.lookup(ctx, strings.ToUpper(hash))
}

// Stats returns a snapshot of the lookups done so far.
func (c *Checker) Stats() Stats {
	return c.stat.Snapshot()
}

// HashPassword returns the upper case hexadecimal SHA1 of password.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SplitHash splits an upper case SHA1 hex hash into the prefix sent to the
// range API and the suffix matched locally.
func SplitHash(hash string) (prefix, suffix string) {
	return hash[:PrefixLength], hash[PrefixLength:]
}

func (c *Checker) lookup(ctx context.Context, hash string) (Result, error) {
	prefix, suffix := SplitHash(hash)

	entries, err := c.rangeEntries(ctx, prefix)
	if err != nil {
		return Result{}, err
	}

	// Padding entries come back with a count of 0.
	if count, ok := entries[suffix]; ok && count > 0 {
		return Result{Breached: true, Count: count}, nil
	}

	return Result{}, nil
}

func (c *Checker) rangeEntries(ctx context.Context, prefix string) (map[string]uint64, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(prefix); ok {
			c.stat.CacheHit()
			return cached.(map[string]uint64), nil
		}
	}

	data, err := c.downloadRange(ctx, prefix)
	if err != nil {
		return nil, err
	}

	entries, err := parseRange(data)
	if err != nil {
		return nil, &CheckError{Kind: ErrUnexpectedResponse, Err: err}
	}

	if c.cache != nil {
		c.cache.SetWithTTL(prefix, entries, 1, c.opts.CacheTTL)
		c.cache.Wait()
	}

	return entries, nil
}

func (c *Checker) rangeHttpRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.opts.RangeURL+prefix, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	if c.opts.Padding {
		req.Header.Set("Add-Padding", "true")
	}

	return req, nil
}

func (c *Checker) downloadRange(ctx context.Context, prefix string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	timer := time.Now()
	req, err := c.rangeHttpRequest(ctx, prefix)
	if err != nil {
		return nil, &CheckError{Kind: ErrNetworkUnavailable, Err: err}
	}

	res, err := c.http.Do(req)
	if err != nil {
		if res != nil {
			_ = res.Body.Close()
		}
		c.stat.RequestFailed()
		return nil, classify(err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Debug().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		c.stat.RequestFailed()
		return nil, &CheckError{
			Kind: ErrNetworkUnavailable,
			Err:  fmt.Errorf("range request failed with status [%d] %s", res.StatusCode, http.StatusText(res.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxRangeBody+1))
	if err != nil {
		c.stat.RequestFailed()
		return nil, classify(err)
	}

	// A cut body could hide the suffix and report a breached password as clean.
	if len(body) > maxRangeBody {
		c.stat.RequestFailed()
		return nil, &CheckError{
			Kind: ErrUnexpectedResponse,
			Err:  fmt.Errorf("range response exceeds %d bytes", maxRangeBody),
		}
	}

	c.stat.RequestComplete(res, time.Since(timer).Milliseconds())
	log.Debug().Msgf("range %s returned %d bytes in %v", prefix, len(body), time.Since(timer))
	return body, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &CheckError{Kind: ErrTimeout, Err: err}
	}

	return &CheckError{Kind: ErrNetworkUnavailable, Err: err}
}

// parseRange reads a "SUFFIX:COUNT" per line response into a suffix to count map.
func parseRange(data []byte) (map[string]uint64, error) {
	entries := make(map[string]uint64)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		suffix, count, ok := strings.Cut(line, ":")
		if !ok || !suffixPattern.MatchString(suffix) {
			return nil, fmt.Errorf("malformed range line %q", truncate(line, 48))
		}

		n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed count for suffix %s: %w", suffix, err)
		}

		entries[strings.ToUpper(suffix)] = n
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
