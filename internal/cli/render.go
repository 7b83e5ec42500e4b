// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"io"
	"strings"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/pkg/hibp"
	"github.com/alvinbaena/pwd-strength/pkg/strength"
	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const goodPasswordMessage = "Great! Your password meets the basic recommended checks."

func scoreBar(score int) string {
	filled := score
	if filled < strength.MinScore {
		filled = strength.MinScore
	}
	if filled > strength.MaxScore {
		filled = strength.MaxScore
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", strength.MaxScore-filled) + "]"
}

func breachFailure(err error) string {
	if kind := hibp.FailureKind(err); kind != nil {
		return kind.Error()
	}

	return "breach check failed"
}

func renderText(w io.Writer, r analyzer.Report) error {
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)
	sb := &strings.Builder{}

	p.Fprintf(sb, "\nPassword strength: %s\n", title.String(string(r.Classification())))
	p.Fprintf(sb, "Score: %d / %d %s\n", r.FinalScore(), strength.MaxScore, scoreBar(r.FinalScore()))
	p.Fprintf(sb, "Estimated crack time: %s\n", r.Estimate.CrackTimeDisplay)

	switch r.Breach {
	case analyzer.BreachFound:
		p.Fprintf(sb, "Breach check: found %d times in known data breaches\n", r.BreachCount)
	case analyzer.BreachClean:
		p.Fprintf(sb, "Breach check: not found in known data breaches\n")
	case analyzer.BreachUnknown:
		p.Fprintf(sb, "Breach check: unavailable (%s)\n", breachFailure(r.BreachErr))
	default:
		p.Fprintf(sb, "Breach check: skipped\n")
	}

	suggestions := r.Suggestions()
	if len(suggestions) == 0 {
		p.Fprintf(sb, "\n%s\n", goodPasswordMessage)
	} else {
		p.Fprintf(sb, "\nSuggestions:\n")
		for _, s := range suggestions {
			p.Fprintf(sb, "  - %s\n", s)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonBreach struct {
	Status analyzer.BreachStatus `json:"status"`
	Count  uint64                `json:"count,omitempty"`
	Error  string                `json:"error,omitempty"`
}

type jsonReport struct {
	Score          int                     `json:"score"`
	Classification strength.Classification `json:"classification"`
	Suggestions    []string                `json:"suggestions"`
	Estimate       strength.Estimate       `json:"estimate"`
	Breach         jsonBreach              `json:"breach"`
}

func renderJSON(w io.Writer, r analyzer.Report) error {
	out := jsonReport{
		Score:          r.FinalScore(),
		Classification: r.Classification(),
		Suggestions:    r.Suggestions(),
		Estimate:       r.Estimate,
		Breach: jsonBreach{
			Status: r.Breach,
			Count:  r.BreachCount,
		},
	}
	if r.Breach == analyzer.BreachUnknown {
		out.Breach.Error = breachFailure(r.BreachErr)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))
	return err
}
