package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spacesedan/feedbackflow/internal/models"
)

const FEEDBACK_COLUMN = "feedback"

var (
	ErrMissingColumn   = errors.New("'feedback' column not found in CSV")
	ErrUnsupportedFile = errors.New("only .csv files are accepted")
)

// Cells holding one of these values are treated as missing, matching what
// spreadsheet exports and pandas consider empty.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

func CheckFilename(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return fmt.Errorf("%w: %q", ErrUnsupportedFile, name)
	}
	return nil
}

// ReadFeedback returns the non-missing values of the feedback column in file
// order. Other columns are ignored.
func ReadFeedback(r io.Reader) (models.FeedbackBatch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := columnIndex(header, FEEDBACK_COLUMN)
	if col < 0 {
		slog.Warn("[Ingest] Uploaded CSV has no feedback column",
			slog.Int("columns", len(header)))
		return nil, ErrMissingColumn
	}

	var (
		batch   models.FeedbackBatch
		dropped int
		line    = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}

		if col >= len(record) {
			dropped++
			continue
		}
		value := record[col]
		if _, isNA := naValues[value]; isNA {
			dropped++
			continue
		}
		batch = append(batch, value)
	}

	slog.Info("[Ingest] Read feedback rows",
		slog.Int("rows", len(batch)),
		slog.Int("dropped", dropped))
	return batch, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == name {
			return i
		}
	}
	return -1
}
