package app

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/rbright/wpactrl/internal/event"
)

// renderTable draws rows under headers; colorize adds a bold header.
func renderTable(headers []string, rows [][]string, colorize bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// parseKeyValues splits a key=value reply, as returned by STATUS, into sorted rows.
// Lines without '=' are kept with an empty value.
func parseKeyValues(reply string) [][]string {
	rows := make([][]string, 0)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		rows = append(rows, []string{key, value})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

// formatEvent renders one event line, colored by severity when requested.
func formatEvent(ev event.Event, colorize bool) string {
	line := strings.TrimRight(ev.Raw, "\r\n ")
	if !colorize {
		return line
	}
	switch {
	case ev.Priority.AtLeast(1):
		return text.FgRed.Sprint(line)
	case ev.Priority.AtLeast(2):
		return text.FgYellow.Sprint(line)
	default:
		return line
	}
}
