/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: csv.go
Description: CSV export of generated records. The header row holds the canonical column
names; floats are written with two decimals and integers verbatim.
*/

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kleascm/mimicry/pkg/generator"
)

// WriteCSV writes the header and one line per record, in column order
func WriteCSV(w io.Writer, columns []string, records []generator.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(columns))
	for i, rec := range records {
		for j, col := range columns {
			line[j] = FormatValue(rec[col])
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile creates path (and its directory) and writes the records into it
func WriteCSVFile(path string, columns []string, records []generator.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteCSV(file, columns, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FormatValue renders one generated value as a CSV field
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
