package types

type IndicatorType string

const (
	IndicatorTypeSMA               IndicatorType = "sma"
	IndicatorTypeEMA               IndicatorType = "ema"
	IndicatorTypeWMA               IndicatorType = "wma"
	IndicatorTypeTEMA              IndicatorType = "tema"
	IndicatorTypeStdDev            IndicatorType = "stddev"
	IndicatorTypeBollingerBands    IndicatorType = "bollinger_bands"
	IndicatorTypeRSI               IndicatorType = "rsi"
	IndicatorTypeLaguerreRSI       IndicatorType = "laguerre_rsi"
	IndicatorTypeATR               IndicatorType = "atr"
	IndicatorTypeMACD              IndicatorType = "macd"
	IndicatorTypeAroon             IndicatorType = "aroon"
	IndicatorTypeAwesomeOscillator IndicatorType = "awesome_oscillator"
	IndicatorTypeIchimoku          IndicatorType = "ichimoku"
)
