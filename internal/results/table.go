package results

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable prints the results matrix plus its mean row as an aligned
// console table.
func WriteTable(w io.Writer, rows [][]float64, rowNames []string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Anomaly Detection Results ===\n\n")

	header := append([]string{"Dataset"}, Columns...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for i, row := range rows {
		name := fmt.Sprintf("row_%d", i)
		if i < len(rowNames) {
			name = rowNames[i]
		}
		fmt.Fprintln(tw, name+"\t"+formatCells(row))
	}

	if len(rows) > 0 {
		fmt.Fprintln(tw, "Mean\t"+formatCells(columnMeans(rows, len(Columns))))
	}

	tw.Flush()
}

func formatCells(row []float64) string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(cells, "\t")
}
