package results

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the result table in CSV form, one row per element.
func WriteCSV(rows []ElementResult, w io.Writer) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("results: writing csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the result table to path, creating or
// truncating it.
func WriteCSVFile(rows []ElementResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("results: creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(rows, f)
}
