package config

import (
	"fmt"
	"os"

	"github.com/BartekS5/legacysync/pkg/models"
)

// LoadFieldAliases returns the built-in field aliases, overridden by the
// JSON file at filePath when one is given. Lists missing from the file keep
// their defaults.
func LoadFieldAliases(filePath string) (models.FieldAliases, error) {
	defaults := models.DefaultFieldAliases()
	if filePath == "" {
		return defaults, nil
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return defaults, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	override, err := models.LoadFieldAliases(bytes)
	if err != nil {
		return defaults, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}

	return defaults.Merge(*override), nil
}
