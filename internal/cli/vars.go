// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import "time"

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// root
	envFile string
	// root
	offline bool
	// root
	requireBreach bool
	// root
	timeout time.Duration
	// root
	auditFile string
	// root
	noAudit bool
	// check
	fromStdin bool
	// check
	jsonOutput bool
	// audit
	inputFile string
	// audit
	workers int
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
)
