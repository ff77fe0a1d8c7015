package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"mediasort/internal/daemonctl"
	"mediasort/internal/media"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatus(w io.Writer, snap *daemonctl.Snapshot, colorize bool) {
	status := snap.Status

	printSection(w, "Daemon", colorize)
	switch {
	case !snap.Reachable:
		fmt.Fprintln(w, renderStatusLine("Daemon", statusInfo, "Not running", colorize))
	case status.Running:
		detail := fmt.Sprintf("Monitoring (pid %d)", status.PID)
		if !status.StartedAt.IsZero() {
			detail += ", since " + status.StartedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintln(w, renderStatusLine("Daemon", statusOK, detail, colorize))
		watchKind, watchDetail := statusOK, "Filesystem events active"
		if !status.Watching {
			watchKind, watchDetail = statusWarn, "Unavailable, relying on periodic sweeps"
		}
		fmt.Fprintln(w, renderStatusLine("Watcher", watchKind, watchDetail, colorize))
	default:
		fmt.Fprintln(w, renderStatusLine("Daemon", statusWarn, fmt.Sprintf("Idle (pid %d)", status.PID), colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Monitor folder", statusInfo, valueOrDash(status.MonitorDir), colorize))
	if status.Workflow.LastError != "" {
		fmt.Fprintln(w, renderStatusLine("Last error", statusError, status.Workflow.LastError, colorize))
	}
	fmt.Fprintln(w)

	printSection(w, "Checks", colorize)
	for _, check := range snap.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(w, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	fmt.Fprintln(w)

	printSection(w, "Dependencies", colorize)
	for _, dep := range status.Dependencies {
		switch {
		case dep.Available:
			fmt.Fprintln(w, renderStatusLine(dep.Name, statusOK, fmt.Sprintf("Ready (command: %s)", dep.Command), colorize))
		case dep.Optional:
			fmt.Fprintln(w, renderStatusLine(dep.Name, statusWarn, valueOrDash(dep.Detail), colorize))
		default:
			fmt.Fprintln(w, renderStatusLine(dep.Name, statusError, valueOrDash(dep.Detail), colorize))
		}
	}

	if !snap.Reachable {
		return
	}
	fmt.Fprintln(w)
	printSection(w, "Session", colorize)
	rows := make([][]string, 0, len(media.Categories)+1)
	for _, category := range media.Categories {
		rows = append(rows, []string{string(category), strconv.FormatUint(status.Stats.Get(category), 10)})
	}
	rows = append(rows, []string{"total", strconv.FormatUint(status.Stats.Total(), 10)})
	fmt.Fprintln(w, renderTable([]string{"Category", "Moved"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintln(w, renderStatusLine("Queue", statusInfo,
		fmt.Sprintf("%d buffered of %d", status.Queue.Buffered, status.Queue.Capacity), colorize))
	fmt.Fprintln(w, renderStatusLine("Processed", statusInfo,
		fmt.Sprintf("%d ok, %d failed", status.Workflow.Processed, status.Workflow.Failed), colorize))
}

func printSection(w io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(w, line)
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
