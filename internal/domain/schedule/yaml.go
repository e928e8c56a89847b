package schedule

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

var ErrEmptyCatalog = errors.New("catalog has no entries")

type catalogFile struct {
	Version string      `yaml:"version"`
	Entries []entryFile `yaml:"entries"`
}

type entryFile struct {
	VaccineID       string `yaml:"vaccine_id"`
	VaccineName     string `yaml:"vaccine_name"`
	Dose            int    `yaml:"dose"`
	TargetAgeDays   int    `yaml:"target_age_days"`
	MinAgeDays      *int   `yaml:"min_age_days"`
	MaxAgeDays      *int   `yaml:"max_age_days"`
	MinIntervalDays *int   `yaml:"min_interval_days"`
	Booster         bool   `yaml:"booster"`
}

// Parse decodifica un calendario en YAML.
// No valida consistencia de edades: eso lo reporta Validate sin abortar la evaluación.
func Parse(raw []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if len(f.Entries) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}

	c := Catalog{
		Version: strings.TrimSpace(f.Version),
		Entries: make([]Entry, 0, len(f.Entries)),
	}
	for _, e := range f.Entries {
		c.Entries = append(c.Entries, Entry{
			VaccineID:       strings.TrimSpace(e.VaccineID),
			VaccineName:     strings.TrimSpace(e.VaccineName),
			DoseNumber:      e.Dose,
			TargetAgeDays:   e.TargetAgeDays,
			MinAgeDays:      e.MinAgeDays,
			MaxAgeDays:      e.MaxAgeDays,
			MinIntervalDays: e.MinIntervalDays,
			IsBooster:       e.Booster,
		})
	}
	return c, nil
}

// LoadFile lee el calendario desde path. Si path está vacío usa el calendario embebido.
func LoadFile(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Default devuelve el esquema nacional embebido en el binario.
func Default() (Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Marshal serializa el calendario al mismo formato que acepta Parse.
func Marshal(c Catalog) ([]byte, error) {
	f := catalogFile{Version: c.Version}
	for _, e := range c.Entries {
		f.Entries = append(f.Entries, entryFile{
			VaccineID:       e.VaccineID,
			VaccineName:     e.VaccineName,
			Dose:            e.DoseNumber,
			TargetAgeDays:   e.TargetAgeDays,
			MinAgeDays:      e.MinAgeDays,
			MaxAgeDays:      e.MaxAgeDays,
			MinIntervalDays: e.MinIntervalDays,
			Booster:         e.IsBooster,
		})
	}
	return yaml.Marshal(f)
}
