// Package reporter defines the sink through which parsers surface recovered malformed input.
package reporter

//go:generate mockgen -destination mock_reporter/reporter.go . Reporter
