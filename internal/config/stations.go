package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DirectionLabels names the two platform directions for display purposes.
type DirectionLabels struct {
	Uptown   string `yaml:"uptown"`
	Downtown string `yaml:"downtown"`
}

// StopGroup is one station entry from the stations file. A group can span
// several GTFS stop ids (station complexes share a name) and lists the
// routes worth showing for it.
type StopGroup struct {
	Name            string          `yaml:"name" validate:"required"`
	StopIDs         []string        `yaml:"stop_ids" validate:"required,min=1,dive,required"`
	Routes          []string        `yaml:"routes" validate:"required,min=1,dive,required"`
	DirectionLabels DirectionLabels `yaml:"direction_labels"`
}

type stationsFile struct {
	StopGroups []StopGroup `yaml:"stop_groups" validate:"required,min=1,dive"`
}

// LoadStations reads and validates the stations YAML file. A missing file is
// a MissingError so callers can treat it as fatal at startup.
func LoadStations(path string) ([]StopGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingError{Key: path}
		}
		return nil, fmt.Errorf("failed to read stations config: %w", err)
	}

	var f stationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse stations config: %w", err)
	}

	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid stations config: %w", err)
	}

	// Default direction labels when the file leaves them out.
	for i := range f.StopGroups {
		if f.StopGroups[i].DirectionLabels.Uptown == "" {
			f.StopGroups[i].DirectionLabels.Uptown = "Uptown"
		}
		if f.StopGroups[i].DirectionLabels.Downtown == "" {
			f.StopGroups[i].DirectionLabels.Downtown = "Downtown"
		}
	}

	return f.StopGroups, nil
}
