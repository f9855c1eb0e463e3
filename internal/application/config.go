package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
)

// Package-level validator instance for configuration documents.
var validate = validator.New()

// SuiteConfig is the YAML document describing a suite run: which
// methods to compute over an election, each with optional parameters
// and an optional ballot conversion applied first.
type SuiteConfig struct {
	// Version specifies the configuration schema version.
	Version string `yaml:"version" validate:"required"`

	// Metadata contains descriptive information about the suite.
	Metadata SuiteMetadata `yaml:"metadata"`

	// Methods lists the tally methods to run. Order is preserved in
	// the results.
	Methods []MethodConfig `yaml:"methods" validate:"required,min=1,dive"`
}

// SuiteMetadata provides descriptive information about a suite
// configuration for organization and discovery.
type SuiteMetadata struct {
	// Name is the human-readable identifier for this suite.
	Name string `yaml:"name" validate:"max=255"`

	// Description explains the suite's purpose.
	Description string `yaml:"description" validate:"max=1000"`
}

// MethodConfig specifies one tally method invocation within a suite.
type MethodConfig struct {
	// Method names the tally to run. It must resolve in the tally
	// registry at run time; the built-in names are validated here.
	Method string `yaml:"method" validate:"required,min=1,max=100"`

	// Conversion optionally names a ballot conversion to apply before
	// tallying. Empty means the ballots are tallied as-is.
	Conversion string `yaml:"conversion,omitempty" validate:"max=100"`

	// Parameters contains method-specific configuration as flexible
	// YAML, validated by the method's own configuration schema.
	Parameters yaml.Node `yaml:"parameters,omitempty"`

	// ConversionParameters configures the conversion strategy the same
	// way Parameters configures the method.
	ConversionParameters yaml.Node `yaml:"conversion_parameters,omitempty"`
}

// ParseSuiteConfig parses and validates a YAML suite document. Schema
// violations are reported as a *domain.ConfigError before any method
// runs.
func ParseSuiteConfig(data []byte) (*SuiteConfig, error) {
	var cfg SuiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.NewConfigError("suite", "failed to parse configuration", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			detail := fmt.Sprintf("field %s failed %q validation", verrs[0].Namespace(), verrs[0].Tag())
			return nil, domain.NewConfigError("suite", detail, domain.ErrInvalidConfiguration)
		}
		return nil, domain.NewConfigError("suite", "configuration validation failed", err)
	}
	return &cfg, nil
}

// paramsToMap decodes a deferred YAML parameters node into the flexible
// map form the factories consume. A zero node yields an empty map.
func paramsToMap(node yaml.Node) (map[string]any, error) {
	params := make(map[string]any)
	if node.Kind == 0 || node.IsZero() {
		return params, nil
	}
	if err := node.Decode(&params); err != nil {
		return nil, domain.NewConfigError("suite", "failed to decode parameters", err)
	}
	return params, nil
}
