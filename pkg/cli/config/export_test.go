package config

import "time"

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath, projectID string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
		projectID:  projectID,
	}
}

// NewSourceForTest creates a Source config for testing purposes
func NewSourceForTest(url string, timeout time.Duration, breaker bool) *Source {
	return &Source{
		url:     url,
		timeout: timeout,
		breaker: breaker,
	}
}

// NewAppConfigForTest creates an AppConfig bound to path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
