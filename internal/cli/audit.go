// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/internal/config"
	"github.com/alvinbaena/pwd-strength/internal/util"
	"github.com/alvinbaena/pwd-strength/pkg/strength"
	"github.com/hashicorp/go-multierror"
	"github.com/jfcg/sorty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/thinhdanggroup/executor"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Analyze every password of a file, one per line, printing masked results",
		Long: "Scores and breach checks every line of a file concurrently. Passwords are never printed, " +
			"each one is identified by its line number.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return auditCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	auditCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "File with one password per line (required)")
	auditCmd.MarkFlagRequired("in-file")
	auditCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent lookups. Defaults to the number of CPUs")

	rootCmd.AddCommand(auditCmd)
}

func auditCommand(cmd *cobra.Command) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)
	defer util.Stats()()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("could not open input file: %w", err)}
	}
	defer f.Close()

	return runAudit(cmd.Context(), cfg, f, cmd.OutOrStdout(), workers)
}

type auditRow struct {
	line   int
	length int
	report analyzer.Report
}

type inputLine struct {
	number   int
	password string
}

// readLines returns the non-empty lines of in with their line numbers.
func readLines(in io.Reader) ([]inputLine, error) {
	var lines []inputLine
	scanner := bufio.NewScanner(in)
	for n := 1; scanner.Scan(); n++ {
		if password := strings.TrimRight(scanner.Text(), "\r"); password != "" {
			lines = append(lines, inputLine{number: n, password: password})
		}
	}

	return lines, scanner.Err()
}

func runAudit(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, threads int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	lines, err := readLines(in)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("could not read input file: %w", err)}
	}

	env, err := newEnvironment(cfg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer env.Close()

	tasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer tasks.Close()

	log.Info().Msgf("analyzing %d passwords with %d workers", len(lines), threads)
	rows := make([]auditRow, len(lines))
	for i, l := range lines {
		if err = tasks.Publish(func(i int, l inputLine) {
			rows[i] = auditRow{
				line:   l.number,
				length: utf8.RuneCountInString(l.password),
				report: env.analyzer.Analyze(ctx, l.password),
			}
		}, i, l); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}
	tasks.Wait()

	if err = writeAuditTable(out, rows); err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("error writing results: %w", err)}
	}

	if env.checker != nil {
		log.Info().Msg(env.checker.Stats().String())
	}

	var failures *multierror.Error
	for _, row := range rows {
		if row.report.Breach == analyzer.BreachUnknown {
			failures = multierror.Append(failures, fmt.Errorf("line %d: %s", row.line, breachFailure(row.report.BreachErr)))
		}
	}

	if failures != nil {
		if cfg.BreachRequired {
			return &ExitError{Code: ExitBreachRequired, Err: failures.ErrorOrNil()}
		}
		log.Warn().Msgf("%d breach checks could not be completed, their results only include local checks", len(failures.Errors))
	}

	return nil
}

type auditSummary struct {
	total    int
	bands    map[strength.Classification]int
	breached int
	unknown  int
	median   float64
	maxScore uint64
	minScore uint64
}

func summarize(rows []auditRow) auditSummary {
	s := auditSummary{total: len(rows), bands: make(map[strength.Classification]int)}
	if len(rows) == 0 {
		return s
	}

	scores := make([]uint64, len(rows))
	for i, row := range rows {
		scores[i] = uint64(row.report.FinalScore())
		s.bands[row.report.Classification()]++
		switch row.report.Breach {
		case analyzer.BreachFound:
			s.breached++
		case analyzer.BreachUnknown:
			s.unknown++
		}
	}

	sorty.SortSlice(scores)
	n := len(scores)
	if n%2 == 1 {
		s.median = float64(scores[n/2])
	} else {
		s.median = float64(scores[n/2-1]+scores[n/2]) / 2
	}
	s.minScore = scores[0]
	s.maxScore = scores[n-1]

	return s
}

func writeAuditTable(w io.Writer, rows []auditRow) error {
	p := message.NewPrinter(language.English)
	sb := &strings.Builder{}

	p.Fprintf(sb, "%-6s %-6s %-5s %-14s %-9s %s\n", "LINE", "LENGTH", "SCORE", "BAR", "STRENGTH", "BREACH")
	for _, row := range rows {
		breach := string(row.report.Breach)
		if row.report.Breach == analyzer.BreachFound {
			breach = p.Sprintf("breached (%d)", row.report.BreachCount)
		}
		p.Fprintf(sb, "%-6d %-6d %-5d %-14s %-9s %s\n",
			row.line, row.length, row.report.FinalScore(), scoreBar(row.report.FinalScore()),
			row.report.Classification(), breach)
	}

	s := summarize(rows)
	p.Fprintf(sb, "\n%d passwords: %d strong, %d moderate, %d weak\n",
		s.total, s.bands[strength.Strong], s.bands[strength.Moderate], s.bands[strength.Weak])
	if s.total > 0 {
		p.Fprintf(sb, "Scores: median %.1f, min %d, max %d\n", s.median, s.minScore, s.maxScore)
	}
	p.Fprintf(sb, "Breached: %d, breach check unavailable: %d\n", s.breached, s.unknown)

	_, err := io.WriteString(w, sb.String())
	return err
}
