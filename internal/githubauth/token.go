// Package githubauth resolves the GitHub access credential used for every
// remote call, preferring process environment variables over the configured
// token file.
package githubauth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names recognized by the token resolver.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	tokenFileReadErrorTemplateConstant = "unable to read token file %s: %w"
	tokenMissingMessageConstant        = "no GitHub access token available"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ErrTokenMissing indicates neither the environment nor the token file supplied a credential.
var ErrTokenMissing = errors.New(tokenMissingMessageConstant)

// ResolveToken returns the first non-empty GitHub authentication token found in
// the provided environment map, the process environment, or the token file at
// tokenFilePath. Resolution happens before any network call; a missing token is
// a startup error.
func ResolveToken(environment map[string]string, tokenFilePath string) (string, error) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, nil
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, nil
			}
		}
	}

	trimmedPath := strings.TrimSpace(tokenFilePath)
	if len(trimmedPath) == 0 {
		return "", ErrTokenMissing
	}

	trimmedPath = expandHomePath(trimmedPath)
	contents, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return "", fmt.Errorf(tokenFileReadErrorTemplateConstant, trimmedPath, readError)
	}

	token := strings.TrimSpace(string(contents))
	if len(token) == 0 {
		return "", ErrTokenMissing
	}

	return token, nil
}

func expandHomePath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return path
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, "~/"))
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
