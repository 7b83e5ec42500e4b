// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwd-strength [COMMAND] [OPTIONS]",
		Short: "Score a password and check it against the Pwned Passwords corpus",
		Long: "Score password strength with local heuristics (length, character classes, common passwords, " +
			"leetspeak and predictable patterns) and optionally check it against the Pwned Passwords " +
			"(haveibeenpwned.com) k-anonymity API. Passwords are never accepted as arguments and never logged.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file to load before reading PWDSTRENGTH_* variables (defaults to ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Skip the breach check, only score locally")
	rootCmd.PersistentFlags().BoolVar(&requireBreach, "require-breach", false, "Fail with exit code 2 when the breach check cannot be completed")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout of the breach check, retries included (overrides PWDSTRENGTH_HIBP_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&auditFile, "audit-file", "", "Masked audit log path (overrides PWDSTRENGTH_AUDIT_FILE)")
	rootCmd.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "Do not write the masked audit log")
}

func Execute() error {
	return rootCmd.Execute()
}
