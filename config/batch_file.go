package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"autoapply/models"
)

// BatchFile is the CLI input: one profile and the jobs to apply to.
type BatchFile struct {
	Profile models.UserProfile         `yaml:"profile"`
	Jobs    []models.ApplicationTarget `yaml:"jobs"`
}

// LoadBatchFile reads and validates a YAML batch file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatchFile(data)
}

func ParseBatchFile(data []byte) (*BatchFile, error) {
	var batch BatchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}

	if missing := batch.Profile.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("profile is missing required fields: %v", missing)
	}
	if len(batch.Jobs) == 0 {
		return nil, errors.New("batch file has no jobs")
	}
	return &batch, nil
}
