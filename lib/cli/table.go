package cli

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// BuildTable renders header and rows as a bordered console table and
// returns it as a string, so callers can route it through the logger.
func BuildTable(header []string, rows [][]string) string {
	builder := &strings.Builder{}
	table := tablewriter.NewWriter(builder)
	table.SetHeader(header)

	headerColors := make([]tablewriter.Colors, len(header))
	for i := range header {
		headerColors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor}
	}
	table.SetHeaderColor(headerColors...)

	table.SetBorder(true)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()
	return builder.String()
}

// BuildKVTable renders an ordered two-column table, for status reports.
// Keys keep their given order, unlike a map dump.
func BuildKVTable(title string, pairs [][2]string) string {
	rows := make([][]string, 0, len(pairs))
	for _, kv := range pairs {
		rows = append(rows, []string{kv[0], kv[1]})
	}
	builder := &strings.Builder{}
	table := tablewriter.NewWriter(builder)
	table.SetHeader([]string{title, ""})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{})
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	return builder.String()
}
