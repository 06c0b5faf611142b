package mocks

//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-signals/internal/trading Broker
//go:generate mockgen -destination=./mock_score_provider.go -package=mocks github.com/rxtech-lab/argo-signals/internal/scoring Provider
//go:generate mockgen -destination=./mock_policy.go -package=mocks github.com/rxtech-lab/argo-signals/internal/policy Policy
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/datasource DataSource
