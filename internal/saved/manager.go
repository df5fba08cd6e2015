package saved

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazysearch/internal/export"
	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no saved filter matches an ID or name
var ErrNotFound = errors.New("saved filter not found")

// InvalidExpressionError is returned when an expression fails validation
type InvalidExpressionError struct {
	Result models.ValidationResult
}

func (e *InvalidExpressionError) Error() string {
	return "filter expression is invalid: " + strings.Join(e.Result.Issues, "; ")
}

// Manager manages saved filter expressions
type Manager struct {
	path    string
	filters []models.SavedFilter
}

// NewManager creates a new saved filter manager
func NewManager(configDir string) (*Manager, error) {
	path := filepath.Join(configDir, "saved_filters.yaml")

	m := &Manager{
		path:    path,
		filters: []models.SavedFilter{},
	}

	// Load existing filters if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load saved filters: %w", err)
		}
	}

	return m, nil
}

// Path returns the backing YAML file
func (m *Manager) Path() string {
	return m.path
}

// Load loads saved filters from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read saved filters file: %w", err)
	}

	if err := yaml.Unmarshal(data, &m.filters); err != nil {
		return fmt.Errorf("failed to parse saved filters: %w", err)
	}

	return nil
}

// Save saves filters to YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.filters)
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved filters file: %w", err)
	}

	return nil
}

// checkExpression validates expr and returns its complexity score
func checkExpression(expr string) (int, error) {
	result := filter.Validate(expr)
	if !result.IsValid {
		return 0, &InvalidExpressionError{Result: result}
	}
	return result.ComplexityScore, nil
}

// Add adds a new saved filter
func (m *Manager) Add(name, description, expression, index string, tags []string) (*models.SavedFilter, error) {
	// Validate inputs
	name = strings.TrimSpace(name)
	expression = strings.TrimSpace(expression)

	if name == "" {
		return nil, fmt.Errorf("saved filter name cannot be empty")
	}
	if expression == "" {
		return nil, fmt.Errorf("saved filter expression cannot be empty")
	}

	score, err := checkExpression(expression)
	if err != nil {
		return nil, err
	}

	// Check for duplicate names (case-insensitive)
	for _, sf := range m.filters {
		if strings.EqualFold(sf.Name, name) {
			return nil, fmt.Errorf("a saved filter with the name '%s' already exists (names are case-insensitive)", name)
		}
	}

	now := time.Now()
	saved := models.SavedFilter{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     strings.TrimSpace(description),
		Expression:      expression,
		Index:           strings.TrimSpace(index),
		Tags:            tags,
		ComplexityScore: score,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	m.filters = append(m.filters, saved)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save filter: %w", err)
	}

	return &saved, nil
}

// Update updates an existing saved filter
func (m *Manager) Update(id string, name, description, expression string, tags []string) error {
	// Validate inputs
	name = strings.TrimSpace(name)
	expression = strings.TrimSpace(expression)

	if name == "" {
		return fmt.Errorf("saved filter name cannot be empty")
	}
	if expression == "" {
		return fmt.Errorf("saved filter expression cannot be empty")
	}

	score, err := checkExpression(expression)
	if err != nil {
		return err
	}

	// Check for duplicate names (case-insensitive, excluding the current filter)
	for _, sf := range m.filters {
		if sf.ID != id && strings.EqualFold(sf.Name, name) {
			return fmt.Errorf("a saved filter with the name '%s' already exists (names are case-insensitive)", name)
		}
	}

	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters[i].Name = name
			m.filters[i].Description = strings.TrimSpace(description)
			m.filters[i].Expression = expression
			m.filters[i].Tags = tags
			m.filters[i].ComplexityScore = score
			m.filters[i].UpdatedAt = time.Now()

			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save updated filter: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("saved filter with ID '%s': %w", id, ErrNotFound)
}

// Delete deletes a saved filter by ID
func (m *Manager) Delete(id string) error {
	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters = append(m.filters[:i], m.filters[i+1:]...)
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save filters after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("saved filter with ID '%s': %w", id, ErrNotFound)
}

// Get returns a saved filter by ID
func (m *Manager) Get(id string) (*models.SavedFilter, error) {
	for _, sf := range m.filters {
		if sf.ID == id {
			return &sf, nil
		}
	}
	return nil, fmt.Errorf("saved filter with ID '%s': %w", id, ErrNotFound)
}

// Find returns a saved filter by ID or by case-insensitive name
func (m *Manager) Find(idOrName string) (*models.SavedFilter, error) {
	for _, sf := range m.filters {
		if sf.ID == idOrName || strings.EqualFold(sf.Name, idOrName) {
			return &sf, nil
		}
	}
	return nil, fmt.Errorf("saved filter '%s': %w", idOrName, ErrNotFound)
}

// List returns all saved filters sorted by name
func (m *Manager) List() []models.SavedFilter {
	sorted := make([]models.SavedFilter, len(m.filters))
	copy(sorted, m.filters)

	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	return sorted
}

// Search searches saved filters by name, description, expression or tags
func (m *Manager) Search(query string) []models.SavedFilter {
	if query == "" {
		return m.List()
	}

	query = strings.ToLower(query)
	var results []models.SavedFilter

	for _, sf := range m.List() {
		if strings.Contains(strings.ToLower(sf.Name), query) ||
			strings.Contains(strings.ToLower(sf.Description), query) ||
			strings.Contains(strings.ToLower(sf.Expression), query) {
			results = append(results, sf)
			continue
		}

		for _, tag := range sf.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				results = append(results, sf)
				break
			}
		}
	}

	return results
}

// RecordUsage updates usage statistics for a saved filter
func (m *Manager) RecordUsage(id string) error {
	for i, sf := range m.filters {
		if sf.ID == id {
			m.filters[i].UsageCount++
			m.filters[i].LastUsed = time.Now()
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save usage statistics: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("saved filter with ID '%s': %w", id, ErrNotFound)
}

// GetMostUsed returns the most frequently used filters
func (m *Manager) GetMostUsed(limit int) []models.SavedFilter {
	sorted := make([]models.SavedFilter, len(m.filters))
	copy(sorted, m.filters)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

// ExportToCSV exports all saved filters to a CSV file
func (m *Manager) ExportToCSV(customPath ...string) (string, error) {
	if len(m.filters) == 0 {
		return "", fmt.Errorf("no saved filters to export")
	}

	// Determine export path
	path := filepath.Join(filepath.Dir(m.path), "saved_filters.csv")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToCSV(m.List(), path); err != nil {
		return "", fmt.Errorf("failed to export saved filters to CSV: %w", err)
	}

	return path, nil
}

// ExportToJSON exports all saved filters to a JSON file
func (m *Manager) ExportToJSON(customPath ...string) (string, error) {
	if len(m.filters) == 0 {
		return "", fmt.Errorf("no saved filters to export")
	}

	// Determine export path
	path := filepath.Join(filepath.Dir(m.path), "saved_filters.json")
	if len(customPath) > 0 && customPath[0] != "" {
		path = customPath[0]
	}

	if err := export.ExportToJSON(m.List(), path); err != nil {
		return "", fmt.Errorf("failed to export saved filters to JSON: %w", err)
	}

	return path, nil
}
