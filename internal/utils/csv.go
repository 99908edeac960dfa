package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"slices"

	"github.com/facette/natsort"
)

// CSV is a table of rows keyed by their first column.
type CSV [][]string

func naturalOrder(a, b []string) int {
	switch {
	case natsort.Compare(a[0], b[0]):
		return -1
	case natsort.Compare(b[0], a[0]):
		return 1
	}
	return 0
}

// Sort orders rows by their first column in natural order, "m_l9" before
// "m_l10".
func (data CSV) Sort() {
	slices.SortStableFunc(data, naturalOrder)
}

// WriteAsCSV writes columns and the sorted rows to <path><kind>/<name>.txt,
// name being filename without directories and extension.
func WriteAsCSV(data CSV, path, kind, filename string, columns []string) error {
	file, err := OpenFile(true, path, kind, GetFilename(filename))
	if err != nil {
		return fmt.Errorf("unable to save %s: %w", kind, err)
	}
	data.Sort()
	w := csv.NewWriter(file)
	w.Write(columns)
	w.WriteAll(data)
	return errors.Join(w.Error(), file.Close())
}
