package calendar

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// cycleFile is the on-disk YAML layout for custom cycle definitions:
//
//	cycles:
//	  - name: watches
//	    periods:
//	      - id: firstwatch
//	        name: First Watch
//	        hour: 20
type cycleFile struct {
	Cycles []cycleDef `yaml:"cycles"`
}

type cycleDef struct {
	Name    string      `yaml:"name"`
	Periods []periodDef `yaml:"periods"`
}

type periodDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Hour int    `yaml:"hour"`
}

// LoadCycleFile reads cycle definitions from a YAML file and returns the
// built cycles keyed by name. A cycle whose periods fail validation is
// skipped with a warning; an unreadable or unparsable file, a missing cycle
// name, or a duplicate cycle name is an error.
func LoadCycleFile(path string, logger *zap.Logger) (map[string]*DailyCycle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cycle file: %w", err)
	}

	var file cycleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse cycle file: %w", err)
	}

	cycles := make(map[string]*DailyCycle)
	for _, def := range file.Cycles {
		if def.Name == "" {
			return nil, fmt.Errorf("cycle file %s: cycle with empty name", path)
		}
		if _, ok := cycles[def.Name]; ok {
			return nil, fmt.Errorf("cycle file %s: duplicate cycle name %q", path, def.Name)
		}

		dc := NewDailyCycle()
		valid := true
		for _, pd := range def.Periods {
			if err := dc.AddPeriod(Period{ID: pd.ID, Name: pd.Name, StartHour: pd.Hour}); err != nil {
				logger.Warn("Skipping cycle with invalid period",
					zap.String("cycle", def.Name),
					zap.String("period", pd.ID),
					zap.Error(err))
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		if dc.Len() == 0 {
			logger.Warn("Skipping cycle with no periods", zap.String("cycle", def.Name))
			continue
		}

		cycles[def.Name] = dc
	}

	logger.Info("Cycle file loaded",
		zap.String("file", path),
		zap.Int("cycles", len(cycles)))

	return cycles, nil
}
