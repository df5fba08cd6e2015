package discovery

import (
	"errors"
	"fmt"
	"os"

	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/subosito/gotenv"
)

// Environment variable names understood by discovery
const (
	EnvEndpoint   = "AZURE_SEARCH_SERVICE_ENDPOINT"
	EnvIndexName  = "AZURE_SEARCH_INDEX_NAME"
	EnvAPIKey     = "AZURE_SEARCH_API_KEY"
	EnvAPIVersion = "AZURE_SEARCH_API_VERSION"
)

// LookupFunc resolves a variable name, reporting whether it was set
type LookupFunc func(string) (string, bool)

// ParseEnvironment reads service settings from the process environment
func ParseEnvironment() *models.DiscoveredService {
	return fromLookup(os.LookupEnv, models.SourceEnvironment)
}

// ParseDotEnv reads service settings from a .env file. A missing file yields nil.
func ParseDotEnv(path string) (*models.DiscoveredService, error) {
	env, err := gotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return fromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}, models.SourceDotEnv), nil
}

func fromLookup(lookup LookupFunc, source models.DiscoverySource) *models.DiscoveredService {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg := models.ServiceConfig{
		Name:       source.String(),
		Endpoint:   get(EnvEndpoint),
		IndexName:  get(EnvIndexName),
		APIKey:     get(EnvAPIKey),
		APIVersion: get(EnvAPIVersion),
	}
	if cfg.Endpoint == "" && cfg.IndexName == "" && cfg.APIKey == "" {
		return nil
	}

	return &models.DiscoveredService{Config: cfg, Source: source}
}
