/*
Package config resolves "the current store" for a domain from the
environment or a per-user local directory, mirroring how a caller that
never specifies an explicit backend URL still gets a working file-scheme
store to pull from.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvURL is the environment variable consulted before falling back to the
// local default directory. It may hold a full backend URL or a short name
// resolved against LocalDefaultDir.
const EnvURL = "DRIFT_CONFIG_URL"

// ConfigNotFound indicates no default store could be resolved: no local
// default directory exists for the requested domain (environment variable
// unset) or for the short name the environment variable holds.
type ConfigNotFound struct {
	Domain string
}

func (e *ConfigNotFound) Error() string {
	return fmt.Sprintf("config: no default store resolvable for domain %q", e.Domain)
}

// LocalDefaultDir returns the per-platform local default directory for a
// domain's file-scheme store: "<user-home>/.drift/config/<domain>" on
// Unix-like systems. os.UserHomeDir already accounts for the per-platform
// home-directory convention (HOME on Unix, USERPROFILE on Windows), so a
// single join expression covers every target without per-OS branching.
func LocalDefaultDir(domain string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".drift", "config", domain), nil
}

// Resolve returns the backend URL for domain's default store: the value of
// DRIFT_CONFIG_URL if set (used verbatim if it looks like a URL, otherwise
// treated as a short name and resolved against the local default
// directory), or the local default directory itself if the environment
// variable is unset. Returns ConfigNotFound if neither source yields an
// existing store.
func Resolve(domain string) (string, error) {
	if raw := os.Getenv(EnvURL); raw != "" {
		if looksLikeURL(raw) {
			return raw, nil
		}
		dir, err := LocalDefaultDir(raw)
		if err != nil {
			return "", err
		}
		if !dirExists(dir) {
			return "", &ConfigNotFound{Domain: domain}
		}
		return "file://" + dir, nil
	}

	dir, err := LocalDefaultDir(domain)
	if err != nil {
		return "", err
	}
	if !dirExists(dir) {
		return "", &ConfigNotFound{Domain: domain}
	}
	return "file://" + dir, nil
}

func looksLikeURL(s string) bool {
	for i, r := range s {
		switch {
		case r == ':':
			return i+2 < len(s) && s[i+1] == '/' && s[i+2] == '/'
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.':
			continue
		default:
			return false
		}
	}
	return false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
