package models

import (
	"strings"
)

// ServiceConfig represents the settings needed to reach a search service index
type ServiceConfig struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	IndexName  string `yaml:"index_name"`
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"-"` // never written to disk
}

// ServiceHost returns the endpoint host without scheme or trailing slash.
// It is used as the keyring account for the API key.
func (c ServiceConfig) ServiceHost() string {
	host := strings.TrimPrefix(c.Endpoint, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// IsComplete reports whether enough settings are present to issue a query
func (c ServiceConfig) IsComplete() bool {
	return c.Endpoint != "" && c.IndexName != "" && c.APIKey != ""
}

// DiscoverySource indicates where service settings were found
type DiscoverySource int

const (
	SourceEnvironment DiscoverySource = iota
	SourceDotEnv
	SourceConfig
	SourceKeyring
)

func (s DiscoverySource) String() string {
	switch s {
	case SourceEnvironment:
		return "Environment"
	case SourceDotEnv:
		return ".env"
	case SourceConfig:
		return "Config File"
	case SourceKeyring:
		return "Keyring"
	default:
		return "Unknown"
	}
}

// DiscoveredService is a search service configuration together with its origin
type DiscoveredService struct {
	Config ServiceConfig
	Source DiscoverySource
}
