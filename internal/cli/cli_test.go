// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/internal/config"
	"github.com/alvinbaena/pwd-strength/pkg/strength"
	"github.com/goccy/go-json"
)

// sha1("password") is 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
const passwordRange = "1E4C9B93F3F0682250B6CF8331B7EE68FD8:3861493\r\n" +
	"0018A45C4D1DEF81644B54AB7F969B88D65:10\r\n"

func rangeServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, rangeURL string) config.Config {
	return config.Config{
		HibpURL:         rangeURL,
		HibpTimeout:     2 * time.Second,
		HibpRetries:     0,
		UserAgent:       "pwd-strength-test",
		BreachCheck:     rangeURL != "",
		AuditEnabled:    false,
		AuditFile:       filepath.Join(t.TempDir(), "audit.log"),
		AuditMaxSizeMB:  1,
		AuditMaxBackups: 1,
		Port:            3100,
	}
}

func stdin(s string) func() (string, error) {
	return lineReader(strings.NewReader(s))
}

func TestRunCheck_Offline(t *testing.T) {
	out := &bytes.Buffer{}
	err := runCheck(nil, testConfig(t, ""), stdin("Sup3r$ecret!\n"), out, false)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	text := out.String()
	for _, want := range []string{"Password strength: Strong", "Score: 9 / 10 [#########-]", "Breach check: skipped", goodPasswordMessage} {
		if !strings.Contains(text, want) {
			t.Errorf("Report should contain %q, got:\n%s", want, text)
		}
	}

	if strings.Contains(text, "Sup3r") {
		t.Errorf("Report should never echo the password")
	}
}

func TestRunCheck_Breached(t *testing.T) {
	srv := rangeServer(t, http.StatusOK, passwordRange)

	out := &bytes.Buffer{}
	if err := runCheck(nil, testConfig(t, srv.URL), stdin("password\n"), out, false); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	text := out.String()
	for _, want := range []string{"Password strength: Weak", "found 3,861,493 times", analyzer.SuggestBreached, strength.SuggestCommon} {
		if !strings.Contains(text, want) {
			t.Errorf("Report should contain %q, got:\n%s", want, text)
		}
	}
}

func TestRunCheck_BreachUnavailable(t *testing.T) {
	srv := rangeServer(t, http.StatusServiceUnavailable, "")

	out := &bytes.Buffer{}
	if err := runCheck(nil, testConfig(t, srv.URL), stdin("Sup3r$ecret!\n"), out, false); err != nil {
		t.Errorf("An optional breach check should not fail the command: %s", err)
	}
	if !strings.Contains(out.String(), "Breach check: unavailable (breach service unavailable)") {
		t.Errorf("Report should explain the breach check failure, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Score: 9 / 10") {
		t.Errorf("Local score should still be reported")
	}

	cfg := testConfig(t, srv.URL)
	cfg.BreachRequired = true
	out.Reset()
	err := runCheck(nil, cfg, stdin("Sup3r$ecret!\n"), out, false)
	if ExitCode(err) != ExitBreachRequired {
		t.Errorf("A required breach check should exit with %d, got %d (%v)", ExitBreachRequired, ExitCode(err), err)
	}
	if !strings.Contains(out.String(), "Score: 9 / 10") {
		t.Errorf("Report should be printed before failing")
	}
}

func TestRunCheck_NoInput(t *testing.T) {
	err := runCheck(nil, testConfig(t, ""), stdin(""), &bytes.Buffer{}, false)
	if ExitCode(err) != ExitFailure {
		t.Errorf("Closed input should exit with %d, got %d", ExitFailure, ExitCode(err))
	}
	if !errors.Is(err, errNoInput) {
		t.Errorf("Should report that no password was entered, got %v", err)
	}
}

func TestRunCheck_EmptyLine(t *testing.T) {
	out := &bytes.Buffer{}
	if err := runCheck(nil, testConfig(t, ""), stdin("\n"), out, false); err != nil {
		t.Fatalf("An empty password should be scored: %s", err)
	}
	if !strings.Contains(out.String(), "Score: 0 / 10 [----------]") {
		t.Errorf("Empty password should score 0, got:\n%s", out.String())
	}
}

func TestRunCheck_JSON(t *testing.T) {
	srv := rangeServer(t, http.StatusOK, passwordRange)

	out := &bytes.Buffer{}
	if err := runCheck(nil, testConfig(t, srv.URL), stdin("password\r\n"), out, true); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	var got jsonReport
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("Output should be JSON: %s\n%s", err, out.String())
	}

	if got.Score != 0 || got.Classification != strength.Weak {
		t.Errorf("Common password should be weak with score 0, got %d %s", got.Score, got.Classification)
	}
	if got.Breach.Status != analyzer.BreachFound || got.Breach.Count != 3861493 {
		t.Errorf("Breach should be reported with its count, got %+v", got.Breach)
	}
}

func TestRunCheck_WritesAudit(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.AuditEnabled = true

	if err := runCheck(nil, cfg, stdin("Sup3r$ecret!\n"), &bytes.Buffer{}, false); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	data, err := os.ReadFile(cfg.AuditFile)
	if err != nil {
		t.Fatalf("Audit file should exist: %s", err)
	}
	if !strings.Contains(string(data), `"score":9`) {
		t.Errorf("Audit entry should hold the score, got %s", data)
	}
	if strings.Contains(string(data), "Sup3r") || strings.Contains(string(data), "ecret") {
		t.Errorf("Audit entry should never hold the password")
	}
}

func TestRunAudit(t *testing.T) {
	srv := rangeServer(t, http.StatusOK, passwordRange)
	cfg := testConfig(t, srv.URL)
	cfg.AuditEnabled = true

	in := strings.NewReader("password\n\nSup3r$ecret!\r\n\r\nxkzmqvtr\n\n")
	out := &bytes.Buffer{}
	if err := runAudit(nil, cfg, in, out, 2); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	text := out.String()
	for _, secret := range []string{"Sup3r$ecret!", "xkzmqvtr"} {
		if strings.Contains(text, secret) {
			t.Errorf("Audit output should never contain passwords, found %q", secret)
		}
	}

	if !strings.Contains(text, "\n5 ") || strings.Contains(text, "\n2 ") {
		t.Errorf("Rows should keep their input line numbers and skip blank lines, got:\n%s", text)
	}

	for _, want := range []string{"breached (3,861,493)", "3 passwords: 1 strong, 0 moderate, 2 weak", "median 3.0", "Breached: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Audit output should contain %q, got:\n%s", want, text)
		}
	}

	f, err := os.Open(cfg.AuditFile)
	if err != nil {
		t.Fatalf("Audit file should exist: %s", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Errorf("Should record one audit entry per password, got %d", lines)
	}
}

func TestReadLines_SkipsBlankLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("one\n\r\n\ntwo\n \n"))
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	expected := []inputLine{{1, "one"}, {4, "two"}, {5, " "}}
	if len(lines) != len(expected) {
		t.Fatalf("Should keep %d lines, got %+v", len(expected), lines)
	}
	for i, l := range lines {
		if l != expected[i] {
			t.Errorf("Line %d should be %+v, got %+v", i, expected[i], l)
		}
	}
}

func TestRenderText_BreachedScoreAgreesWithBand(t *testing.T) {
	r := analyzer.Report{
		Score:       strength.Score("Sup3r$ecret!"),
		Breach:      analyzer.BreachFound,
		BreachCount: 12,
	}

	out := &bytes.Buffer{}
	if err := renderText(out, r); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	for _, want := range []string{"Password strength: Weak", "Score: 0 / 10 [----------]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Report should contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestRunAudit_RequiredBreach(t *testing.T) {
	srv := rangeServer(t, http.StatusInternalServerError, "")
	cfg := testConfig(t, srv.URL)
	cfg.BreachRequired = true

	err := runAudit(nil, cfg, strings.NewReader("one\ntwo\n"), &bytes.Buffer{}, 1)
	if ExitCode(err) != ExitBreachRequired {
		t.Fatalf("Should exit with %d, got %d (%v)", ExitBreachRequired, ExitCode(err), err)
	}
	if !strings.Contains(err.Error(), "line 1") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Every failed line should be reported, got %s", err)
	}
}

func TestSummarize(t *testing.T) {
	rows := make([]auditRow, 0, 4)
	for _, score := range []int{8, 2, 5, 4} {
		rows = append(rows, auditRow{report: analyzer.Report{
			Score: strength.Result{Score: score, Classification: strength.Classify(score)},
		}})
	}

	s := summarize(rows)
	if s.median != 4.5 || s.minScore != 2 || s.maxScore != 8 {
		t.Errorf("Should compute median 4.5 min 2 max 8, got %v %d %d", s.median, s.minScore, s.maxScore)
	}
	if s.bands[strength.Moderate] != 2 || s.bands[strength.Strong] != 1 || s.bands[strength.Weak] != 1 {
		t.Errorf("Unexpected bands %v", s.bands)
	}

	if empty := summarize(nil); empty.total != 0 || empty.median != 0 {
		t.Errorf("Empty input should summarize to zero")
	}
}

func TestScoreBar(t *testing.T) {
	tests := map[int]string{
		0:  "[----------]",
		4:  "[####------]",
		10: "[##########]",
		12: "[##########]",
	}

	for score, want := range tests {
		if got := scoreBar(score); got != want {
			t.Errorf("Bar for %d should be %s, got %s", score, want, got)
		}
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Errorf("No error should exit with 0")
	}
	if ExitCode(errors.New("boom")) != ExitFailure {
		t.Errorf("Plain errors should exit with %d", ExitFailure)
	}

	wrapped := fmt.Errorf("wrapped: %w", &ExitError{Code: ExitBreachRequired, Err: errors.New("required")})
	if ExitCode(wrapped) != ExitBreachRequired {
		t.Errorf("Exit code should be found through wrapping")
	}
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() {
		offline, requireBreach, noAudit, timeout, auditFile = false, false, false, 0, ""
	})

	offline, noAudit, timeout, auditFile = true, true, 3*time.Second, "custom.log"
	cfg := testConfig(t, "https://example.com/range/")
	cfg.AuditEnabled = true
	applyFlags(&cfg)

	if cfg.BreachCheck || cfg.AuditEnabled {
		t.Errorf("Offline and no-audit should disable the breach check and the audit log")
	}
	if cfg.HibpTimeout != 3*time.Second || cfg.AuditFile != "custom.log" {
		t.Errorf("Flags should override timeout and audit file, got %v %s", cfg.HibpTimeout, cfg.AuditFile)
	}
}

func TestNewRouter(t *testing.T) {
	cfg := testConfig(t, "")
	env, err := newEnvironment(cfg)
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	defer env.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/check/password", strings.NewReader(`{"password":"Sup3r$ecret!"}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(cfg, env).ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"score":9`) {
		t.Errorf("Router should serve the check API, got %d %s", w.Code, w.Body.String())
	}
}

func TestSelfSignedPair(t *testing.T) {
	pair, err := selfSignedPair(time.Hour)
	if err != nil {
		t.Fatalf("Should generate a self-signed certificate: %s", err)
	}

	if len(pair.Certificate) == 0 || pair.PrivateKey == nil {
		t.Errorf("Certificate pair should hold a certificate and its key")
	}
}
