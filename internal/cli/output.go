package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
)

// printJSON renders any value as indented JSON, the --json output path.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal output")
	}
	fmt.Println(string(data))
	return nil
}

// printTable renders rows with aligned columns.
func printTable(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printRow(w, header)
	for _, row := range rows {
		printRow(w, row)
	}
	_ = w.Flush()
}

func printRow(w *tabwriter.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

// degradedNotice tells the user the data on screen is the demo fallback.
// Degradation is deliberate product behavior, but it should never pass for
// live data silently.
func degradedNotice() {
	fmt.Fprintln(os.Stderr, "note: backend unreachable, showing built-in demo data")
}
