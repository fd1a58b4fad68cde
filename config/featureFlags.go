package config

import (
	"os"
	"strings"
)

func envBool(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// IngestionAuditEnabled persists one audit row per upload (requires DB).
//
// Set via env:
// - INGESTION_AUDIT_ENABLED=true
func IngestionAuditEnabled() bool {
	return envBool("INGESTION_AUDIT_ENABLED")
}

// AnalystReportEnabled exposes the narrative report endpoint
// (requires GEMINI_API_KEY).
//
// Set via env:
// - ANALYST_REPORT_ENABLED=true
func AnalystReportEnabled() bool {
	return envBool("ANALYST_REPORT_ENABLED")
}
