package types

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeWMA            IndicatorType = "wma"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeStochastic     IndicatorType = "stochastic_oscillator"
	IndicatorTypeADX            IndicatorType = "adx"
	IndicatorTypeVWAP           IndicatorType = "vwap"
	IndicatorTypeOBV            IndicatorType = "obv"
	IndicatorTypeParabolicSAR   IndicatorType = "parabolic_sar"
)

// IndicatorParams is the normalized parameter tuple for one indicator
// computation. Only the fields meaningful to the indicator family are set;
// the rest stay zero, so two requests for the same computation compare
// equal by value and collapse into a single series.
type IndicatorParams struct {
	Period       int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	KPeriod      int
	DPeriod      int
	StdDev       float64
	AFStart      float64
	AFIncrement  float64
	AFMax        float64
}

// DefaultParams returns the canonical parameterization for an indicator family.
func DefaultParams(indicator IndicatorType) IndicatorParams {
	switch indicator {
	case IndicatorTypeRSI:
		return IndicatorParams{Period: 14}
	case IndicatorTypeMACD:
		return IndicatorParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
	case IndicatorTypeSMA, IndicatorTypeEMA, IndicatorTypeWMA:
		return IndicatorParams{Period: 20}
	case IndicatorTypeBollingerBands:
		return IndicatorParams{Period: 20, StdDev: 2.0}
	case IndicatorTypeATR, IndicatorTypeADX:
		return IndicatorParams{Period: 14}
	case IndicatorTypeStochastic:
		return IndicatorParams{KPeriod: 14, DPeriod: 3}
	case IndicatorTypeParabolicSAR:
		return IndicatorParams{AFStart: 0.02, AFIncrement: 0.02, AFMax: 0.2}
	case IndicatorTypeVWAP, IndicatorTypeOBV:
		return IndicatorParams{}
	default:
		return IndicatorParams{}
	}
}

// SeriesField distinguishes the output series of multi-output indicators
// (e.g. the MACD histogram vs. its signal line).
type SeriesField string

const (
	SeriesFieldValue  SeriesField = "value"
	SeriesFieldHist   SeriesField = "hist"
	SeriesFieldSignal SeriesField = "signal"
	SeriesFieldUpper  SeriesField = "upper"
	SeriesFieldMiddle SeriesField = "middle"
	SeriesFieldLower  SeriesField = "lower"
	SeriesFieldK      SeriesField = "k"
	SeriesFieldD      SeriesField = "d"
	SeriesFieldBull   SeriesField = "bull"
	SeriesFieldBear   SeriesField = "bear"
)

// SeriesKey identifies one indicator output series on a frame. Lookup is by
// value equality on the whole key, so parameter variants of the same family
// coexist without name-based collisions.
type SeriesKey struct {
	Indicator IndicatorType
	Field     SeriesField
	Params    IndicatorParams
}
