package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Output formats of the listing commands.
const (
	formatTable   = "table"
	formatCompact = "compact"
	formatCSV     = "csv"
	formatJSON    = "json"
)

// renderTable writes data in the requested format. raw is what the json format encodes.
func renderTable(w io.Writer, format string, header []string, data [][]string, raw any) error {
	switch format {
	case formatTable:
		table := baseTable(w, header, data)
		table.Render()
	case formatCompact:
		table := baseTable(w, header, data)
		table.SetColumnSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.Render()
	case formatCSV:
		cw := csv.NewWriter(w)
		err := cw.Write(header)
		if err != nil {
			return err
		}

		err = cw.WriteAll(data)
		if err != nil {
			return err
		}
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	default:
		return fmt.Errorf("Invalid format %q", format)
	}

	return nil
}

func baseTable(w io.Writer, header []string, data [][]string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(data)
	return table
}
