package engine

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Mode decides how the driver reacts to an order protocol violation.
type Mode string

const (
	// ModeSimulation aborts the run on a protocol violation.
	ModeSimulation Mode = "simulation"
	// ModeLive logs the violation and skips the bar.
	ModeLive Mode = "live"
)

type BacktestEngineV1Config struct {
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting cash of the simulated broker,exclusiveMinimum=0,default=100"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" validate:"required,oneof=interactive_broker zero_commission percentage" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	// CommissionRate is only used by the percentage broker.
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate" validate:"gte=0,lt=1" jsonschema:"title=Commission Rate,description=Fraction of the notional charged per fill,minimum=0,default=0.001"`
	SafetyFraction float64 `yaml:"safety_fraction" json:"safety_fraction" validate:"gt=0,lte=1" jsonschema:"title=Safety Fraction,description=Fraction of the affordable quantity an entry may use,exclusiveMinimum=0,maximum=1,default=0.95"`
	MinOrder       float64 `yaml:"min_order" json:"min_order" validate:"gte=0" jsonschema:"title=Minimum Order,description=Entries are skipped while cash is below this amount,minimum=0,default=10"`
	Mode           Mode    `yaml:"mode" json:"mode" validate:"required,oneof=simulation live" jsonschema:"title=Mode,enum=simulation,enum=live,default=simulation"`
	// TradeOnLive gates decisions on bars older than LiveLagSeconds.
	TradeOnLive      bool                       `yaml:"trade_on_live" json:"trade_on_live" jsonschema:"title=Trade On Live,description=Skip decisions on bars older than live_lag_seconds,default=false"`
	LiveLagSeconds   int                        `yaml:"live_lag_seconds" json:"live_lag_seconds" validate:"gte=0" jsonschema:"title=Live Lag Seconds,minimum=0,default=65"`
	StartTime        optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime          optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	WarmupBars       int                        `yaml:"warmup_bars" json:"warmup_bars" validate:"gte=0" jsonschema:"title=Warmup Bars,description=Bars read before start_time so indicators can settle,minimum=0,default=0"`
	Verbose          bool                       `yaml:"verbose" json:"verbose" jsonschema:"title=Verbose,description=Log the status gauge on every bar,default=false"`
	DecimalPrecision int                        `yaml:"decimal_precision" json:"decimal_precision" validate:"gte=0,lte=12" jsonschema:"title=Decimal Precision,description=Decimal places order sizes are rounded down to,minimum=0,maximum=12,default=8"`
}

// configYAML is the on-disk shape of BacktestEngineV1Config; optional times are plain pointers.
type configYAML struct {
	InitialCapital   float64               `yaml:"initial_capital"`
	Broker           commission_fee.Broker `yaml:"broker"`
	CommissionRate   float64               `yaml:"commission_rate"`
	SafetyFraction   float64               `yaml:"safety_fraction"`
	MinOrder         float64               `yaml:"min_order"`
	Mode             Mode                  `yaml:"mode"`
	TradeOnLive      bool                  `yaml:"trade_on_live"`
	LiveLagSeconds   int                   `yaml:"live_lag_seconds"`
	StartTime        *time.Time            `yaml:"start_time"`
	EndTime          *time.Time            `yaml:"end_time"`
	WarmupBars       int                   `yaml:"warmup_bars"`
	Verbose          bool                  `yaml:"verbose"`
	DecimalPrecision int                   `yaml:"decimal_precision"`
}

// UnmarshalYAML fills missing keys from EmptyConfig.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	defaults := EmptyConfig()
	config := configYAML{
		InitialCapital:   defaults.InitialCapital,
		Broker:           defaults.Broker,
		CommissionRate:   defaults.CommissionRate,
		SafetyFraction:   defaults.SafetyFraction,
		MinOrder:         defaults.MinOrder,
		Mode:             defaults.Mode,
		LiveLagSeconds:   defaults.LiveLagSeconds,
		DecimalPrecision: defaults.DecimalPrecision,
	}

	if err := value.Decode(&config); err != nil {
		return err
	}

	*c = BacktestEngineV1Config{
		InitialCapital:   config.InitialCapital,
		Broker:           config.Broker,
		CommissionRate:   config.CommissionRate,
		SafetyFraction:   config.SafetyFraction,
		MinOrder:         config.MinOrder,
		Mode:             config.Mode,
		TradeOnLive:      config.TradeOnLive,
		LiveLagSeconds:   config.LiveLagSeconds,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
		WarmupBars:       config.WarmupBars,
		Verbose:          config.Verbose,
		DecimalPrecision: config.DecimalPrecision,
	}

	if config.StartTime != nil {
		c.StartTime = optional.Some(config.StartTime.UTC())
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(config.EndTime.UTC())
	}

	return nil
}

// MarshalYAML writes absent start and end times as null.
func (c BacktestEngineV1Config) MarshalYAML() (any, error) {
	config := configYAML{
		InitialCapital:   c.InitialCapital,
		Broker:           c.Broker,
		CommissionRate:   c.CommissionRate,
		SafetyFraction:   c.SafetyFraction,
		MinOrder:         c.MinOrder,
		Mode:             c.Mode,
		TradeOnLive:      c.TradeOnLive,
		LiveLagSeconds:   c.LiveLagSeconds,
		WarmupBars:       c.WarmupBars,
		Verbose:          c.Verbose,
		DecimalPrecision: c.DecimalPrecision,
	}

	if start, err := c.StartTime.Take(); err == nil {
		config.StartTime = &start
	}

	if end, err := c.EndTime.Take(); err == nil {
		config.EndTime = &end
	}

	return config, nil
}

// Validate checks every field and the time range.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time is before start_time")
	}

	return nil
}

// LoadConfig reads and validates a YAML engine configuration.
func LoadConfig(path string) (BacktestEngineV1Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BacktestEngineV1Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	var config BacktestEngineV1Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return BacktestEngineV1Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	if err := config.Validate(); err != nil {
		return BacktestEngineV1Config{}, err
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config schema", err)
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time, broker commission_fee.Broker) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialCapital = 10000
	config.Broker = broker
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:   100,
		Broker:           commission_fee.BrokerPercentage,
		CommissionRate:   0.001,
		SafetyFraction:   0.95,
		MinOrder:         10,
		Mode:             ModeSimulation,
		TradeOnLive:      false,
		LiveLagSeconds:   65,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
		WarmupBars:       0,
		Verbose:          false,
		DecimalPrecision: 8,
	}
}
