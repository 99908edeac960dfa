package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadFloatRows reads whitespace separated rows of exactly columns numbers.
// Blank lines and lines starting with '#' are skipped.
func ReadFloatRows(filename string, columns int) ([][]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(file)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != columns {
			return nil, fmt.Errorf("%s:%d: expected %d numbers, got %d", filename, lineNumber, columns, len(fields))
		}
		row := make([]float64, columns)
		for i, field := range fields {
			if row[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, lineNumber, err)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return rows, nil
}

// GetFilename strips directories and the extension.
func GetFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenFile creates <outputPath><kind>/<modelName>.txt, or
// <outputPath><modelName>_<kind>.txt without a per kind directory.
func OpenFile(makeDir bool, outputPath, kind, modelName string) (*os.File, error) {
	if !makeDir || kind == "" || kind == "." {
		return os.Create(outputPath + modelName + "_" + kind + ".txt")
	}
	if err := os.MkdirAll(outputPath+kind, 0750); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(outputPath+kind, modelName+".txt"))
}
