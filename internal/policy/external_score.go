package policy

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/scoring"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// ExternalScoreThreshold trades on a score produced by an external model from
// the bar's feature vector. The score is used as is.
type ExternalScoreThreshold struct {
	params   ExternalScoreThresholdParams
	provider scoring.Provider
	features *indicator.FeatureSet
}

func NewExternalScoreThreshold(params ExternalScoreThresholdParams, provider scoring.Provider) (*ExternalScoreThreshold, error) {
	if provider == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "external score policy needs a score provider")
	}

	return &ExternalScoreThreshold{
		params:   params,
		provider: provider,
		features: indicator.NewFeatureSet(),
	}, nil
}

func (p *ExternalScoreThreshold) Name() string {
	return string(KindExternalScoreThreshold)
}

func (p *ExternalScoreThreshold) Indicators() []indicator.Spec {
	return p.features.Specs()
}

func (p *ExternalScoreThreshold) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *ExternalScoreThreshold) Decide(ctx context.Context, dc DecisionContext) (types.Decision, error) {
	vector, ok := p.features.Vector(dc.Bar, dc.Snapshot)
	if !ok {
		return types.Hold(warmupReason), nil
	}

	score, err := p.provider.Score(ctx, dc.Bar, vector)
	if err != nil {
		return types.Hold("score unavailable"), errors.Wrap(errors.ErrCodeScoreUnavailable, "failed to score bar", err)
	}

	if undefined(score) {
		return types.Hold("score undefined"), nil
	}

	d := types.Hold(fmt.Sprintf("score %.4f", score))

	if !dc.Position.IsOpen {
		if score > p.params.BuyThreshold {
			d = enter(dc, fmt.Sprintf("score %.4f > buy threshold %.4f", score, p.params.BuyThreshold))
		}
	} else if score < p.params.SellThreshold {
		d = types.Exit(fmt.Sprintf("score %.4f < sell threshold %.4f", score, p.params.SellThreshold))
	}

	return withStatus(d, dc, p.params.SellThreshold, score, p.params.BuyThreshold), nil
}
