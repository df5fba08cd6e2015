package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazysearch/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// CSVHeader is the column order written by ExportToCSV
var CSVHeader = []string{"Name", "Description", "Expression", "Index", "Tags", "Complexity", "Created", "Updated", "Last Used", "Usage Count"}

// ExportToCSV exports saved filters to a CSV file
func ExportToCSV(filters []models.SavedFilter, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sf := range filters {
		lastUsed := ""
		if !sf.LastUsed.IsZero() {
			lastUsed = sf.LastUsed.Format(timeLayout)
		}

		row := []string{
			sf.Name,
			sf.Description,
			sf.Expression,
			sf.Index,
			strings.Join(sf.Tags, ", "),
			strconv.Itoa(sf.ComplexityScore),
			sf.CreatedAt.Format(timeLayout),
			sf.UpdatedAt.Format(timeLayout),
			lastUsed,
			strconv.Itoa(sf.UsageCount),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}

	return nil
}

// ExportToJSON exports saved filters to a JSON file
func ExportToJSON(filters []models.SavedFilter, path string) error {
	data, err := json.MarshalIndent(filters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}
