package engine

import (
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/risk"
	"github.com/rxtech-lab/t0-trading/internal/strategy"
	"github.com/rxtech-lab/t0-trading/internal/types"
	"github.com/rxtech-lab/t0-trading/internal/version"
	"github.com/rxtech-lab/t0-trading/pkg/errors"
)

type MarksConfig struct {
	// Provider selects the mark price source: static, polygon, or binance.
	// Empty disables mark fetching; snapshot marks are used as-is.
	Provider string `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Mark price source,enum=,enum=static,enum=polygon,enum=binance"`
	// Path points to the JSON price file for the static provider.
	Path optional.Option[string] `yaml:"path" json:"path" jsonschema:"title=Path,description=Price file for the static provider"`
	// APIKey authenticates against the polygon provider.
	APIKey optional.Option[string] `yaml:"api_key" json:"api_key" jsonschema:"title=API Key,description=API key for the polygon provider"`
}

type T0EngineV1Config struct {
	Version  string          `yaml:"version" json:"version" validate:"required" jsonschema:"title=Version,description=Config format version checked against the engine version"`
	Strategy strategy.Config `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Signal generation settings"`
	Risk     risk.Config     `yaml:"risk" json:"risk" jsonschema:"title=Risk,description=Risk controller limits"`
	Marks    MarksConfig     `yaml:"marks" json:"marks" jsonschema:"title=Marks,description=Mark price provider settings"`
}

// UnmarshalYAML implements custom unmarshaling for T0EngineV1Config
func (c *T0EngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		Version  string          `yaml:"version"`
		Strategy strategy.Config `yaml:"strategy"`
		Risk     risk.Config     `yaml:"risk"`
		Marks    struct {
			Provider string  `yaml:"provider"`
			Path     *string `yaml:"path"`
			APIKey   *string `yaml:"api_key"`
		} `yaml:"marks"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Version = config.Version
	c.Strategy = config.Strategy
	c.Risk = config.Risk
	c.Marks.Provider = config.Marks.Provider
	if config.Marks.Path != nil {
		c.Marks.Path = optional.Some(*config.Marks.Path)
	}
	if config.Marks.APIKey != nil {
		c.Marks.APIKey = optional.Some(*config.Marks.APIKey)
	}

	return nil
}

// Validate checks version compatibility and every threshold before the
// engine touches any input file.
func (c *T0EngineV1Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if err := c.Strategy.Validate(); err != nil {
		return err
	}

	if err := c.Risk.Validate(); err != nil {
		return err
	}

	switch c.Marks.Provider {
	case "", "polygon", "binance":
	case "static":
		if c.Marks.Path.IsNone() {
			return errors.New(errors.ErrCodeInvalidConfiguration, "static marks provider requires a path")
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown marks provider %q", c.Marks.Provider)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the T0EngineV1Config
func (c *T0EngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[string]" {
				return &jsonschema.Schema{
					Type: "string",
				}
			}
			if t.String() == "types.StrategyMode" {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{string(types.StrategyModeBasePosition), string(types.StrategyModePendingPair)},
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "t0-engine-v1-config"
	schema.Description = "Configuration schema for T0EngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the T0EngineV1Config
func (c *T0EngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a config suitable for tests: both strategy modes work
// and every risk limit is enabled with a sane threshold.
func TestConfig(mode types.StrategyMode, exposureCap float64) T0EngineV1Config {
	return T0EngineV1Config{
		Version: version.GetVersion(),
		Strategy: strategy.Config{
			Mode:        mode,
			SellPremium: 0.002,
			BuyDiscount: 0.002,
		},
		Risk: risk.Config{
			MaxAggregateExposure:  risk.Limit{Enabled: true, Threshold: exposureCap},
			MaxConcentrationRatio: risk.Limit{Enabled: true, Threshold: 0.2},
			StopLossRatio:         risk.Limit{Enabled: true, Threshold: -0.05},
			TakeProfitRatio:       risk.Limit{Enabled: true, Threshold: 0.1},
		},
	}
}

// EmptyConfig returns a T0EngineV1Config with default values
func EmptyConfig() T0EngineV1Config {
	return T0EngineV1Config{
		Version: version.GetVersion(),
		Strategy: strategy.Config{
			Mode:        types.StrategyModeBasePosition,
			SellPremium: 0.002,
			BuyDiscount: 0.002,
		},
		Marks: MarksConfig{
			Path:   optional.None[string](),
			APIKey: optional.None[string](),
		},
	}
}
