// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package main

import (
	_ "net/http/pprof"
	"os"

	"github.com/alvinbaena/pwd-strength/internal/cli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Reports go to stdout, logs never do.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := cli.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(cli.ExitCode(err))
	}
}
