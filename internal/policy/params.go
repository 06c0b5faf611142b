package policy

// ThresholdMAParams configures the moving-average mean-reversion policy.
type ThresholdMAParams struct {
	MAType        string  `yaml:"ma_type" json:"ma_type" mapstructure:"ma_type" validate:"required,oneof=sma ema wma" jsonschema:"title=Moving Average Type,enum=sma,enum=ema,enum=wma,default=ema"`
	Period        int     `yaml:"period" json:"period" mapstructure:"period" validate:"gt=0" jsonschema:"title=Period,description=Moving average period,minimum=1,default=300"`
	BuyThreshold  float64 `yaml:"buy_threshold" json:"buy_threshold" mapstructure:"buy_threshold" validate:"gte=0,lt=1" jsonschema:"title=Buy Threshold,description=Buy when close is this fraction below the average,minimum=0,default=0.07"`
	SellThreshold float64 `yaml:"sell_threshold" json:"sell_threshold" mapstructure:"sell_threshold" validate:"gte=0" jsonschema:"title=Sell Threshold,description=Sell when close is this fraction above the entry price,minimum=0,default=0.1"`
	// StopLoss of 0 disables the stop.
	StopLoss float64 `yaml:"stop_loss" json:"stop_loss" mapstructure:"stop_loss" validate:"gte=0,lt=1" jsonschema:"title=Stop Loss,description=Exit when close falls this fraction below the entry price (0 disables),minimum=0,default=0"`
}

func defaultThresholdMAParams() ThresholdMAParams {
	return ThresholdMAParams{MAType: "ema", Period: 300, BuyThreshold: 0.07, SellThreshold: 0.1}
}

// BollingerParams configures the band used for entries by every Bollinger policy.
type BollingerParams struct {
	Period   int     `yaml:"period" json:"period" mapstructure:"period" validate:"gt=0" jsonschema:"title=Period,description=Window of the middle band and standard deviation,minimum=1,default=20"`
	LowerDev float64 `yaml:"lower_dev" json:"lower_dev" mapstructure:"lower_dev" validate:"gte=0" jsonschema:"title=Lower Deviation,description=Standard deviation multiplier for the lower band,minimum=0,default=2"`
	UpperDev float64 `yaml:"upper_dev" json:"upper_dev" mapstructure:"upper_dev" validate:"gte=0" jsonschema:"title=Upper Deviation,description=Standard deviation multiplier for the upper band,minimum=0,default=2"`
}

func defaultBollingerParams() BollingerParams {
	return BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}
}

type BollingerBandParams struct {
	BollingerParams `yaml:",inline" mapstructure:",squash"`
}

type BollingerStopLossParams struct {
	BollingerParams `yaml:",inline" mapstructure:",squash"`
	StopLoss        float64 `yaml:"stop_loss" json:"stop_loss" mapstructure:"stop_loss" validate:"gt=0,lt=1" jsonschema:"title=Stop Loss,description=Exit when close falls this fraction below the entry price,exclusiveMinimum=0,default=0.05"`
}

type BollingerDeadbandTrailingParams struct {
	BollingerParams `yaml:",inline" mapstructure:",squash"`
	StopLoss        float64 `yaml:"stop_loss" json:"stop_loss" mapstructure:"stop_loss" validate:"gt=0,lt=1" jsonschema:"title=Stop Loss,exclusiveMinimum=0,default=0.07"`
	// Deadband is the fraction above entry inside which no exit logic acts.
	Deadband            float64 `yaml:"deadband" json:"deadband" mapstructure:"deadband" validate:"gte=0" jsonschema:"title=Deadband,minimum=0,default=0"`
	TrailingStopPercent float64 `yaml:"trailing_stop_percent" json:"trailing_stop_percent" mapstructure:"trailing_stop_percent" validate:"gt=0,lt=1" jsonschema:"title=Trailing Stop,description=Exit when close falls this fraction below the high-water mark,exclusiveMinimum=0,default=0.13"`
}

type TrailingStopOnlyParams struct {
	BollingerParams `yaml:",inline" mapstructure:",squash"`
	TrailPercent    float64 `yaml:"trail_percent" json:"trail_percent" mapstructure:"trail_percent" validate:"gt=0,lt=1" jsonschema:"title=Trail Percent,description=Exit when close falls this fraction below the highest close since entry,exclusiveMinimum=0,default=0.1"`
}

// ExternalScoreThresholdParams compares the model score against two
// thresholds. Their relative order is not constrained.
type ExternalScoreThresholdParams struct {
	BuyThreshold  float64 `yaml:"buy_threshold" json:"buy_threshold" mapstructure:"buy_threshold" jsonschema:"title=Buy Threshold,description=Enter when the score is above this value,default=0.45"`
	SellThreshold float64 `yaml:"sell_threshold" json:"sell_threshold" mapstructure:"sell_threshold" jsonschema:"title=Sell Threshold,description=Exit when the score is below this value,default=-0.45"`
}

type LaguerreRSIThresholdParams struct {
	Gamma float64 `yaml:"gamma" json:"gamma" mapstructure:"gamma" validate:"gte=0,lt=1" jsonschema:"title=Gamma,description=Laguerre filter coefficient,minimum=0,default=0.5"`
	// Period is the number of bars before the indicator is trusted.
	Period        int     `yaml:"period" json:"period" mapstructure:"period" validate:"gt=0" jsonschema:"title=Warmup Period,minimum=1,default=6"`
	BuyThreshold  float64 `yaml:"buy_threshold" json:"buy_threshold" mapstructure:"buy_threshold" validate:"gte=0,lte=1" jsonschema:"title=Buy Threshold,minimum=0,maximum=1,default=0.1"`
	SellThreshold float64 `yaml:"sell_threshold" json:"sell_threshold" mapstructure:"sell_threshold" validate:"gte=0,lte=1" jsonschema:"title=Sell Threshold,minimum=0,maximum=1,default=0.7"`
}
