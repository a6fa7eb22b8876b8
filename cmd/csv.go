// csv.go - CSV-Eingabe fuer das Iterate Command
// Hauptfunktionen: readCSVColumns
package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// readCSVColumns liest eine CSV-Datei spaltenweise als float32. Mit header
// wird die erste Zeile als Spaltennamen verwendet, sonst werden Namen
// c0..cN vergeben.
func readCSVColumns(path string, header bool) ([]string, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: no rows", path)
	}

	var names []string
	if header {
		names = records[0]
		records = records[1:]
		if len(records) == 0 {
			return nil, nil, fmt.Errorf("%s: no rows after header", path)
		}
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("c%d", i)
		}
	}

	columns := make([][]float32, len(names))
	for row, record := range records {
		if len(record) != len(names) {
			return nil, nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, row+1, len(record), len(names))
		}
		for col, field := range record {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: row %d column %d: %w", path, row+1, col, err)
			}
			columns[col] = append(columns[col], float32(v))
		}
	}

	return names, columns, nil
}
