package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

// Scenario catalogs are static JSON files under the data directory. Both
// storage backends share these loaders.

func listScenarioFiles(dataDir string, logger *slog.Logger) (map[string]string, error) {
	scenarios := make(map[string]string)

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		s, err := readScenarioFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable scenario file", "path", path, "error", err)
			return nil
		}

		// WalkDir is lexical, so on a display-name collision the first
		// file wins deterministically
		if prev, ok := scenarios[s.Name]; ok {
			logger.Warn("Duplicate scenario name, keeping first file",
				"name", s.Name, "kept", prev, "skipped", filepath.Base(path))
			return nil
		}
		scenarios[s.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		logger.Error("Failed to walk scenarios directory", "error", err)
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	return scenarios, nil
}

func loadScenarioFile(dataDir, filename string) (*scenario.Scenario, error) {
	path := filepath.Join(dataDir, filepath.Base(filename))
	s, err := readScenarioFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario not found: %s", filename)
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filename, err)
	}
	return s, nil
}

func readScenarioFile(path string) (*scenario.Scenario, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s scenario.Scenario
	if err := json.Unmarshal(file, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario file: %w", err)
	}
	if s.FileName == "" {
		s.FileName = filepath.Base(path)
	}
	return &s, nil
}
