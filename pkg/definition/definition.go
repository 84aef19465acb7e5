// Package definition loads questionnaire definitions from JSON or YAML
// documents and ships the embedded candidate intake questionnaire used by the
// CLI and the demo host.
package definition

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

//go:embed data/candidate_intake.yaml
var defaultFS embed.FS

const defaultPath = "data/candidate_intake.yaml"

var (
	defaultOnce sync.Once
	defaultQ    model.Questionnaire
	defaultErr  error
)

// Default returns the embedded candidate intake questionnaire.
func Default() (model.Questionnaire, error) {
	defaultOnce.Do(func() {
		data, err := defaultFS.ReadFile(defaultPath)
		if err != nil {
			defaultErr = fmt.Errorf("definition: read embedded default: %w", err)
			return
		}
		defaultQ, defaultErr = LoadBytes(data, defaultPath)
	})

	if defaultErr != nil {
		return model.Questionnaire{}, defaultErr
	}
	return defaultQ, nil
}

// Load reads and validates a questionnaire definition from fsys.
func Load(fsys fs.FS, name string) (model.Questionnaire, error) {
	if fsys == nil {
		return model.Questionnaire{}, fmt.Errorf("definition: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return model.Questionnaire{}, fmt.Errorf("definition: read %s: %w", name, err)
	}
	return LoadBytes(data, name)
}

// LoadFile reads and validates a questionnaire definition from disk.
func LoadFile(path string) (model.Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Questionnaire{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return LoadBytes(data, path)
}

// LoadBytes parses a questionnaire document, attempting JSON first and YAML
// second, then validates it. name only qualifies error messages.
func LoadBytes(data []byte, name string) (model.Questionnaire, error) {
	if name == "" {
		name = "definition"
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Questionnaire{}, fmt.Errorf("definition: %s is empty", name)
	}

	q, err := decode(data)
	if err != nil {
		return model.Questionnaire{}, fmt.Errorf("definition: parse %s: %w", name, err)
	}
	if err := q.Validate(); err != nil {
		return model.Questionnaire{}, fmt.Errorf("definition: %s: %w", name, err)
	}
	return q, nil
}

func decode(data []byte) (model.Questionnaire, error) {
	var q model.Questionnaire
	if err := json.Unmarshal(data, &q); err == nil {
		return q, nil
	}

	q = model.Questionnaire{}
	if err := yaml.Unmarshal(data, &q); err == nil {
		return q, nil
	}

	return model.Questionnaire{}, fmt.Errorf("invalid JSON or YAML")
}
