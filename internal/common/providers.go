package common

import (
	"fmt"
	"os"
	"path/filepath"

	"wallet-ledger-go/internal/gateway"

	"gopkg.in/yaml.v2"
)

type ProvidersConfig struct {
	Providers []gateway.ProviderConfig `yaml:"providers"`
}

// LoadProviderConfig parses the payment provider registry (providers.yaml).
func LoadProviderConfig(providersFile string) ([]gateway.ProviderConfig, error) {
	var providersPath string
	if filepath.IsAbs(providersFile) {
		providersPath = providersFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		providersPath = filepath.Join(wd, providersFile)
	}

	data, err := os.ReadFile(providersPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", providersFile, err)
	}

	var config ProvidersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", providersFile, err)
	}

	for i, provider := range config.Providers {
		if provider.Name == "" {
			return nil, fmt.Errorf("provider at index %d missing name", i)
		}
		if provider.BaseUrl == "" {
			return nil, fmt.Errorf("provider at index %d missing base_url", i)
		}
		if provider.Currency == "" {
			return nil, fmt.Errorf("provider at index %d missing currency", i)
		}
	}

	return config.Providers, nil
}

// FindProvider returns the registry entry with the given name.
func FindProvider(providers []gateway.ProviderConfig, name string) (*gateway.ProviderConfig, error) {
	for _, provider := range providers {
		if provider.Name == name {
			return &provider, nil
		}
	}
	return nil, fmt.Errorf("provider %q not found in registry", name)
}
