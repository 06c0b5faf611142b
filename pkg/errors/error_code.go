package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). Any of these is a ConfigurationError:
	// fatal and reported before the first bar is processed.
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidMultiplier    ErrorCode = 105
	ErrCodeInvalidParameterGrid ErrorCode = 107
	ErrCodeUnsupportedPolicy    ErrorCode = 108
	ErrCodeEmptyDataFeed        ErrorCode = 109
	ErrCodeDataOutOfOrder       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeMarketDataParseFailed ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Policy errors (400-499)
	ErrCodeScoreUnavailable ErrorCode = 401

	// Order lifecycle errors (500-599)
	ErrCodeOrderProtocolViolation ErrorCode = 500
	ErrCodeOrderRejected          ErrorCode = 501
	ErrCodeOrderNotFound          ErrorCode = 502
	ErrCodeInvalidOrder           ErrorCode = 503

	// Backtest errors (600-699)
	ErrCodeBacktestRunFailed   ErrorCode = 600
	ErrCodeBacktestWriteFailed ErrorCode = 601
)
