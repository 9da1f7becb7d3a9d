package sqlitepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("LURKER_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("LURKER_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not find lurker SQLite database; pass --sqlite")
}

func sqliteCandidates() []string {
	candidates := []string{
		"lurker.db",
		"lurker.sqlite",
		"lurker.demo.sqlite",
		filepath.Join(".lurker", "lurker.db"),
		filepath.Join(".lurker", "lurker.sqlite"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".lurker", "lurker.db"),
			filepath.Join(home, ".lurker", "lurker.sqlite"),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "lurker", "lurker.db"),
			filepath.Join(xdgHome, "lurker", "lurker.sqlite"),
		}, candidates...)
	}

	return candidates
}
