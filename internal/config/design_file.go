package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"designspace/domain/design"
	"designspace/domain/report"
	"designspace/domain/stimuli"
	"designspace/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DesignFile is the YAML description of a design space evaluation. Any section
// left out keeps its built-in default.
type DesignFile struct {
	Constants  design.ExperimentConstants `yaml:"constants"`
	NValues    []int                      `yaml:"n_values" validate:"min=1,dive,gt=0"`
	EValues    []int                      `yaml:"e_values" validate:"min=1,dive,gt=0"`
	Highlights report.Highlights          `yaml:"highlights" validate:"dive"`
	Roster     stimuli.RosterSpec         `yaml:"roster"`
}

// DefaultDesignFile reproduces the reference experiment
func DefaultDesignFile() *DesignFile {
	return &DesignFile{
		Constants:  design.DefaultConstants(),
		NValues:    design.DefaultPopulationSizes(),
		EValues:    design.DefaultExposureCounts(),
		Highlights: report.DefaultHighlights(),
		Roster:     stimuli.DefaultRosterSpec(),
	}
}

// LoadDesignFile reads path over the defaults. An empty path or a missing file
// yields the defaults unchanged.
func LoadDesignFile(path string) (*DesignFile, error) {
	df := DefaultDesignFile()
	if path == "" {
		return df, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return df, nil
		}
		return nil, errors.Wrapf(err, "failed to read design file %s", path)
	}
	return ParseDesignFile(data)
}

// ParseDesignFile decodes YAML over the defaults and validates the result
func ParseDesignFile(data []byte) (*DesignFile, error) {
	df := DefaultDesignFile()
	if err := yaml.Unmarshal(data, df); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse design file: %w", err))
	}
	if err := df.Validate(); err != nil {
		return nil, err
	}
	return df, nil
}

// Validate checks struct tags first, then the domain rules
func (df *DesignFile) Validate() error {
	if err := validateStruct(df); err != nil {
		return err
	}
	if err := df.Constants.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := df.Roster.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validateStruct runs validator tags and folds every field error into one message
func validateStruct(v interface{}) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return errors.ConfigInvalid(strings.Join(msgs, "; "))
}
