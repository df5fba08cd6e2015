package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazysearch/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = "2006-01-02 15:04:05"

// likeEscaper makes LIKE wildcards in user text match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Entry represents a single validation history entry
type Entry struct {
	ID              int
	Expression      string
	IndexName       string
	Source          string // "tui", "cli", "search"
	IsValid         bool
	IssueCount      int
	WarningCount    int
	ComplexityScore int
	Issues          []string
	ValidatedAt     time.Time
}

// NewEntry builds an entry from a validation result
func NewEntry(expr, index, source string, result models.ValidationResult) Entry {
	return Entry{
		Expression:      expr,
		IndexName:       index,
		Source:          source,
		IsValid:         result.IsValid,
		IssueCount:      len(result.Issues),
		WarningCount:    len(result.Warnings),
		ComplexityScore: result.ComplexityScore,
		Issues:          result.Issues,
	}
}

// Stats summarizes the stored history
type Stats struct {
	Total         int
	Invalid       int
	AvgComplexity float64
	MaxComplexity int
}

// Store manages validation history persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new history store
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	_, err = db.Exec(schemaSQL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Add adds a new validation to history
func (s *Store) Add(entry Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO validation_history
		(expression, index_name, source, is_valid, issue_count, warning_count, complexity_score, issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Expression,
		entry.IndexName,
		entry.Source,
		entry.IsValid,
		entry.IssueCount,
		entry.WarningCount,
		entry.ComplexityScore,
		strings.Join(entry.Issues, "\n"),
	)
	return err
}

// Prune keeps only the most recent maxEntries rows. Zero keeps everything.
func (s *Store) Prune(maxEntries int) error {
	if maxEntries <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM validation_history
		WHERE id NOT IN (
			SELECT id FROM validation_history
			ORDER BY validated_at DESC, id DESC
			LIMIT ?
		)`, maxEntries)
	return err
}

// GetRecent retrieves the most recent history entries
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, expression, index_name, source, is_valid, issue_count,
		       warning_count, complexity_score, issues, validated_at
		FROM validation_history
		ORDER BY validated_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Search searches history by expression text
func (s *Store) Search(query string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, expression, index_name, source, is_valid, issue_count,
		       warning_count, complexity_score, issues, validated_at
		FROM validation_history
		WHERE expression LIKE ? ESCAPE '\'
		ORDER BY validated_at DESC, id DESC
		LIMIT ?`, "%"+likeEscaper.Replace(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Stats returns aggregate figures over all stored entries
func (s *Store) Stats() (Stats, error) {
	var st Stats
	var avg sql.NullFloat64
	var max sql.NullInt64

	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_valid THEN 0 ELSE 1 END), 0),
		       AVG(complexity_score),
		       MAX(complexity_score)
		FROM validation_history`).Scan(&st.Total, &st.Invalid, &avg, &max)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute history stats: %w", err)
	}

	st.AvgComplexity = avg.Float64
	st.MaxComplexity = int(max.Int64)
	return st, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var issues string
		var validatedAt string

		err := rows.Scan(
			&e.ID,
			&e.Expression,
			&e.IndexName,
			&e.Source,
			&e.IsValid,
			&e.IssueCount,
			&e.WarningCount,
			&e.ComplexityScore,
			&issues,
			&validatedAt,
		)
		if err != nil {
			return nil, err
		}

		if issues != "" {
			e.Issues = strings.Split(issues, "\n")
		}
		e.ValidatedAt = parseTime(validatedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// parseTime accepts both the CURRENT_TIMESTAMP layout and the RFC3339 form
// the driver uses when reading DATETIME columns
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
