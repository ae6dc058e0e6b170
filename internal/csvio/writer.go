package csvio

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/RichoDemus/payments-engine/pkg/engine"
)

// reportPrecision is the fixed number of fractional digits in the report.
const reportPrecision = 4

var reportHeader = []string{"client", "available", "held", "total", "locked"}

// Writer renders account snapshots as delimited text with a header row.
type Writer struct {
	csv *csv.Writer
}

// NewWriter wraps an io.Writer receiving the report.
func NewWriter(writer io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(writer)}
}

// WriteAll writes the header followed by one row per snapshot, sorted by
// client id so runs over the same input produce identical reports.
func (writer *Writer) WriteAll(snapshots []engine.Snapshot) error {
	sorted := make([]engine.Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Client < sorted[j].Client })

	if err := writer.csv.Write(reportHeader); err != nil {
		return err
	}
	for _, snapshot := range sorted {
		row := []string{
			strconv.FormatUint(uint64(snapshot.Client), 10),
			snapshot.Available.StringFixed(reportPrecision),
			snapshot.Held.StringFixed(reportPrecision),
			snapshot.Total.StringFixed(reportPrecision),
			strconv.FormatBool(snapshot.Locked),
		}
		if err := writer.csv.Write(row); err != nil {
			return err
		}
	}
	writer.csv.Flush()
	return writer.csv.Error()
}
