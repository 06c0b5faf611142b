package policy

import (
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rxtech-lab/argo-signals/internal/scoring"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/strategy"
)

// Dependencies are collaborators some policies need beyond their parameters.
type Dependencies struct {
	ScoreProvider scoring.Provider
}

type entry struct {
	build  func(params map[string]any, deps Dependencies) (Policy, error)
	schema func() (string, error)
}

var registry = map[Kind]entry{
	KindThresholdMA: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, defaultThresholdMAParams())
			if err != nil {
				return nil, err
			}

			return NewThresholdMA(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(ThresholdMAParams{}) },
	},
	KindBollingerBand: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, BollingerBandParams{BollingerParams: defaultBollingerParams()})
			if err != nil {
				return nil, err
			}

			return NewBollingerBand(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(BollingerBandParams{}) },
	},
	KindBollingerStopLoss: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, BollingerStopLossParams{BollingerParams: defaultBollingerParams(), StopLoss: 0.05})
			if err != nil {
				return nil, err
			}

			return NewBollingerStopLoss(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(BollingerStopLossParams{}) },
	},
	KindBollingerDeadbandTrailing: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, BollingerDeadbandTrailingParams{
				BollingerParams:     BollingerParams{Period: 25, LowerDev: 1.6, UpperDev: 1.6},
				StopLoss:            0.07,
				TrailingStopPercent: 0.13,
			})
			if err != nil {
				return nil, err
			}

			return NewBollingerDeadbandTrailing(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(BollingerDeadbandTrailingParams{}) },
	},
	KindTrailingStopOnly: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, TrailingStopOnlyParams{BollingerParams: defaultBollingerParams(), TrailPercent: 0.1})
			if err != nil {
				return nil, err
			}

			return NewTrailingStopOnly(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(TrailingStopOnlyParams{}) },
	},
	KindExternalScoreThreshold: {
		build: func(params map[string]any, deps Dependencies) (Policy, error) {
			p, err := decode(params, ExternalScoreThresholdParams{BuyThreshold: 0.45, SellThreshold: -0.45})
			if err != nil {
				return nil, err
			}

			return NewExternalScoreThreshold(p, deps.ScoreProvider)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(ExternalScoreThresholdParams{}) },
	},
	KindLaguerreRSIThreshold: {
		build: func(params map[string]any, _ Dependencies) (Policy, error) {
			p, err := decode(params, LaguerreRSIThresholdParams{Gamma: 0.5, Period: 6, BuyThreshold: 0.1, SellThreshold: 0.7})
			if err != nil {
				return nil, err
			}

			return NewLaguerreRSIThreshold(p)
		},
		schema: func() (string, error) { return strategy.ToJSONSchema(LaguerreRSIThresholdParams{}) },
	},
}

// New builds the policy of the given kind. params are decoded over the kind's
// defaults and validated; unknown keys are rejected.
func New(kind Kind, params map[string]any, deps Dependencies) (Policy, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedPolicy, "unsupported policy %q", kind)
	}

	return e.build(params, deps)
}

// Schema returns the JSON schema of the parameters of kind.
func Schema(kind Kind) (string, error) {
	e, ok := registry[kind]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedPolicy, "unsupported policy %q", kind)
	}

	return e.schema()
}

// Kinds lists every supported policy kind in sorted order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

var validate = validator.New()

func decode[T any](params map[string]any, defaults T) (T, error) {
	out := defaults

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return out, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create parameter decoder", err)
	}

	if err := decoder.Decode(params); err != nil {
		return out, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to decode policy parameters", err)
	}

	if err := validate.Struct(out); err != nil {
		return out, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid policy parameters", err)
	}

	return out, nil
}

// toMap flattens a parameter struct into its mapstructure keys.
func toMap(params any) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(params, &out); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to flatten %T parameters", params)
	}

	return out, nil
}

// mustMap flattens one of this package's parameter structs. A failure is a
// programming error in the struct definition, so it panics.
func mustMap(params any) map[string]any {
	out, err := toMap(params)
	if err != nil {
		panic(err)
	}

	return out
}
