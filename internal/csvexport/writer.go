// Package csvexport renders pipeline run reports as CSV for operator export.
package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns defines the CSV header row.
var Columns = []string{
	"Run ID",
	"Asset ID",
	"Triggered By",
	"Status",
	"Canceled",
	"Attempts",
	"Error",
	"Optimize",
	"Upload",
	"Distribute",
	"Verify",
	"Total Retries",
	"Live Effects",
	"Queued At",
	"Started At",
	"Finished At",
	"Duration (ms)",
}

// Writer wraps csv.Writer for exporting pipeline runs as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteRuns converts a batch of runs to CSV rows and writes them.
func (w *Writer) WriteRuns(runs []domain.PipelineRun) error {
	for i := range runs {
		if err := w.csv.Write(RunToRow(&runs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// RunToRow converts a single run to a string slice matching Columns. When the
// run carries no result document (it never reached the executor), the
// per-stage columns stay empty.
func RunToRow(run *domain.PipelineRun) []string {
	row := make([]string, len(Columns))

	row[0] = run.ID.String()
	row[1] = run.AssetID.String()
	row[2] = run.TriggeredBy.String()
	row[3] = string(run.Status)
	row[5] = strconv.Itoa(run.Attempts)
	row[6] = run.Error
	row[13] = run.QueuedAt.Format(time.RFC3339)
	row[14] = formatTime(run.StartedAt)
	row[15] = formatTime(run.FinishedAt)
	row[16] = strconv.FormatInt(run.DurationMS, 10)

	if len(run.Result) == 0 {
		return row
	}
	var res pipeline.Result
	if err := json.Unmarshal(run.Result, &res); err != nil {
		return row
	}

	row[4] = formatBool(res.Canceled)
	retries := 0
	for _, o := range res.Stages {
		retries += o.Retries
		cell := string(o.State)
		if o.Retries > 0 {
			cell = fmt.Sprintf("%s (%d retries)", cell, o.Retries)
		}
		switch o.Stage {
		case "optimize":
			row[7] = cell
		case "upload":
			row[8] = cell
		case "distribute":
			row[9] = cell
		case "verify":
			row[10] = cell
		}
	}
	row[11] = strconv.Itoa(retries)
	row[12] = strconv.Itoa(len(res.Effects))

	return row
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a report name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
