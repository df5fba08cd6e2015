package discovery

import (
	"errors"

	"github.com/rebeliceyang/lazysearch/internal/credentials"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"go.uber.org/zap"
)

// KeySource looks up a stored API key for a service host
type KeySource interface {
	Get(host string) (string, error)
}

// Discoverer merges service settings from every known source
type Discoverer struct {
	dotEnvPaths []string
	keys        KeySource
	logger      *zap.Logger
}

// NewDiscoverer creates a discoverer reading the given .env files.
// keys may be nil when no keyring is available.
func NewDiscoverer(keys KeySource, logger *zap.Logger, dotEnvPaths ...string) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(dotEnvPaths) == 0 {
		dotEnvPaths = []string{".env"}
	}
	return &Discoverer{dotEnvPaths: dotEnvPaths, keys: keys, logger: logger}
}

// DiscoverAll returns every source that supplied settings, highest priority first
func (d *Discoverer) DiscoverAll() []models.DiscoveredService {
	var found []models.DiscoveredService

	if svc := ParseEnvironment(); svc != nil {
		found = append(found, *svc)
	}
	for _, path := range d.dotEnvPaths {
		svc, err := ParseDotEnv(path)
		if err != nil {
			d.logger.Warn("skipping .env file", zap.String("path", path), zap.Error(err))
			continue
		}
		if svc != nil {
			found = append(found, *svc)
		}
	}
	return found
}

// Resolve builds the effective service configuration. Each field takes the
// first non-empty value from the environment, .env files, then base. A missing
// API key is looked up in the keyring.
func (d *Discoverer) Resolve(base models.ServiceConfig) models.ServiceConfig {
	result := models.ServiceConfig{Name: base.Name}

	layers := append(d.DiscoverAll(), models.DiscoveredService{Config: base, Source: models.SourceConfig})
	for _, layer := range layers {
		c := layer.Config
		result.Endpoint = firstNonEmpty(result.Endpoint, c.Endpoint)
		result.IndexName = firstNonEmpty(result.IndexName, c.IndexName)
		result.APIKey = firstNonEmpty(result.APIKey, c.APIKey)
		result.APIVersion = firstNonEmpty(result.APIVersion, c.APIVersion)
	}

	if result.APIKey == "" && result.Endpoint != "" && d.keys != nil {
		key, err := d.keys.Get(result.ServiceHost())
		switch {
		case err == nil:
			result.APIKey = key
		case errors.Is(err, credentials.ErrKeyNotFound):
			d.logger.Debug("no stored api key", zap.String("host", result.ServiceHost()))
		default:
			d.logger.Warn("failed to read api key", zap.String("host", result.ServiceHost()), zap.Error(err))
		}
	}

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
