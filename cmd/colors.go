package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "healthy", "success", "ok":
		return colorSuccess(status)
	case "warning", "degraded":
		return colorWarn(status)
	case "critical", "error", "failed":
		return colorError(status)
	default:
		return status
	}
}

func formatSeverityWithColor(severity string) string {
	switch strings.ToLower(severity) {
	case "low":
		return colorInfo(severity)
	case "medium":
		return colorWarn(severity)
	case "high", "critical":
		return colorError(severity)
	default:
		return severity
	}
}
