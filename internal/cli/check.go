// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alvinbaena/pwd-strength/internal/analyzer"
	"github.com/alvinbaena/pwd-strength/internal/config"
	"github.com/alvinbaena/pwd-strength/internal/util"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoInput = errors.New("no password was entered")

var (
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Score a password and check it against known data breaches",
		Long: "Reads one password, from a masked prompt or from the first line of stdin with --stdin, " +
			"and prints its strength report. The password is never accepted as an argument.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCommand(cmd)
		},
	}
)

func init() {
	checkCmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the password from the first line of stdin instead of prompting")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")

	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command) error {
	util.ApplyCliSettings(verbose, profile, pprofPort)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	read := promptPassword
	if fromStdin {
		read = lineReader(cmd.InOrStdin())
	}

	return runCheck(cmd.Context(), cfg, read, cmd.OutOrStdout(), jsonOutput)
}

func runCheck(ctx context.Context, cfg config.Config, read func() (string, error), out io.Writer, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := newEnvironment(cfg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer env.Close()

	password, err := read()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("could not read the password: %w", err)}
	}

	report := env.analyzer.Analyze(ctx, password)
	if report.Breach == analyzer.BreachUnknown && !cfg.BreachRequired {
		log.Warn().Msgf("could not check the password against known data breaches (%s). Showing local checks only",
			breachFailure(report.BreachErr))
	}

	if asJSON {
		err = renderJSON(out, report)
	} else {
		err = renderText(out, report)
	}
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("error writing report: %w", err)}
	}

	if report.Breach == analyzer.BreachUnknown && cfg.BreachRequired {
		return &ExitError{
			Code: ExitBreachRequired,
			Err:  fmt.Errorf("breach check is required but could not be completed: %s", breachFailure(report.BreachErr)),
		}
	}

	return nil
}

// lineReader returns the first line of in, without its line terminator. An
// empty line is a valid, empty, password. Closed input is not.
func lineReader(in io.Reader) func() (string, error) {
	return func() (string, error) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", err
			}
			if line == "" {
				return "", errNoInput
			}
		}

		return strings.TrimRight(line, "\r\n"), nil
	}
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", errNoInput
		}
		return "", err
	}

	return result, nil
}
