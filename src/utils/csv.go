package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadSymbolsCSV reads ticker symbols from the first column of a CSV file with a header row.
// Symbols are upper-cased and de-duplicated, keeping file order.
func LoadSymbolsCSV(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open the file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read the file: %v", err)
	}

	seen := make(map[string]struct{})
	var symbols []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(row[0]))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}
