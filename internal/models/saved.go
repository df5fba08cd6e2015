package models

import "time"

// SavedFilter is a named filter expression kept for reuse
type SavedFilter struct {
	ID              string    `yaml:"id" json:"id"`
	Name            string    `yaml:"name" json:"name"`
	Description     string    `yaml:"description" json:"description"`
	Expression      string    `yaml:"expression" json:"expression"`
	Index           string    `yaml:"index" json:"index"`
	Tags            []string  `yaml:"tags" json:"tags"`
	ComplexityScore int       `yaml:"complexity_score" json:"complexity_score"`
	CreatedAt       time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt       time.Time `yaml:"updated_at" json:"updated_at"`
	LastUsed        time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
	UsageCount      int       `yaml:"usage_count" json:"usage_count"`
}
