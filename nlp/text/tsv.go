package text

import (
	"encoding/csv"
	"fmt"
	"os"
)

// TSVLines reads a tab-separated file into its records. Quote
// characters are taken as literally as the csv package allows and
// rows may differ in field count, matching the loose TSV dialect of
// the GLUE datasets.
func TSVLines(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("text: read tsv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("text: read tsv %s: %w", path, err)
	}
	return records, nil
}
