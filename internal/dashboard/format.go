package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/relaytools/oscmd-mcp/internal/executor"
)

func formatArgv(argv []string) string {
	if len(argv) == 0 {
		return "-"
	}
	return strings.Join(argv, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func statusColor(status executor.Status) tcell.Color {
	switch status {
	case executor.StatusRunning:
		return tcell.ColorGreen
	case executor.StatusCompleted:
		return tcell.ColorBlue
	case executor.StatusFailed, executor.StatusError:
		return tcell.ColorRed
	case executor.StatusTerminated:
		return tcell.ColorMaroon
	default:
		return tcell.ColorWhite
	}
}

func formatExitCode(code *int) string {
	if code == nil {
		return "-"
	}
	if *code < 0 {
		return "timeout"
	}
	return strconv.Itoa(*code)
}

func formatUptime(started time.Time, ended *time.Time) string {
	end := time.Now()
	if ended != nil {
		end = *ended
	}
	return end.Sub(started).Truncate(time.Second).String()
}
