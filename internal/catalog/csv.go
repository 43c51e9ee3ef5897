// internal/catalog/csv.go
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadCSV seeds the catalog from a CSV stream with a header row and
// title,author,isbn columns. Rows that fail to register (short rows,
// blank fields, duplicate ISBNs) are logged and skipped rather than
// aborting the whole load. It returns the number of books registered.
func LoadCSV(ctx context.Context, svc Service, r io.Reader, logger *slog.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	loaded := 0
	header := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("read csv record: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 3 {
			logger.Warn("skipping csv row with too few fields", "fields", len(record))
			continue
		}

		title := strings.TrimSpace(record[0])
		author := strings.TrimSpace(record[1])
		isbn := strings.TrimSpace(record[2])
		if title == "" || author == "" || isbn == "" {
			logger.Warn("skipping csv row with blank fields", "title", title, "isbn", isbn)
			continue
		}

		if _, err := svc.Register(ctx, title, author, isbn); err != nil {
			logger.Warn("skipping csv row", "isbn", isbn, "error", err)
			continue
		}
		loaded++
	}

	return loaded, nil
}

// LoadCSVFile opens path and seeds the catalog from it. A missing file
// is not an error; the catalog simply starts empty.
func LoadCSVFile(ctx context.Context, svc Service, path string, logger *slog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("books csv not found, starting with an empty catalog", "path", path)
			return 0, nil
		}
		return 0, fmt.Errorf("open books csv: %w", err)
	}
	defer f.Close()

	return LoadCSV(ctx, svc, f, logger)
}
