// Package export formats already-fetched profile data as CSV or JSON. Pure
// formatting over cached values; no statistic is recomputed here.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/domain"
)

var profileHeader = []string{
	"column", "data_type", "count", "null_count", "unique_count", "min", "max", "mean",
}

// ProfileCSV writes one row per column of the profile.
func ProfileCSV(w io.Writer, profile *domain.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, col := range profile.Columns {
		row := []string{
			col.Name,
			col.DataType,
			strconv.FormatInt(col.Count, 10),
			strconv.FormatInt(col.NullCount, 10),
			strconv.FormatInt(col.UniqueCount, 10),
			formatFloat(col.Min),
			formatFloat(col.Max),
			formatFloat(col.Mean),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write csv row for %s", col.Name)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// ProfileJSON writes the profile as indented JSON.
func ProfileJSON(w io.Writer, profile *domain.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(profile), "encode profile json")
}

// formatFloat renders optional aggregates, empty for non-numeric columns.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
