// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package util

import "testing"

func TestToScreamingSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Port":              "PORT",
		"HibpTimeout":       "HIBP_TIMEOUT",
		"AuditMaxSizeMB":    "AUDIT_MAX_SIZE_MB",
		"HibpURL":           "HIBP_URL",
		"TLSCert":           "TLS_CERT",
		"AuditEnabled true": "AUDIT_ENABLED TRUE",
		"":                  "",
	}

	for in, expected := range tests {
		if got := ToScreamingSnakeCase(in); got != expected {
			t.Errorf("ToScreamingSnakeCase(%q) should be %q, got %q", in, expected, got)
		}
	}
}
