package domain

import "math"

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// OptionStyle 行权方式
type OptionStyle string

const (
	OptionStyleEuropean OptionStyle = "EUROPEAN" // 欧式, 仅到期日行权
	OptionStyleAmerican OptionStyle = "AMERICAN" // 美式, 到期前任意时刻行权
)

// OptionContract 期权合约
// 构造后不可变, 所有定价组件共享同一合约快照。
type OptionContract struct {
	Symbol     string      `json:"symbol"`
	Type       OptionType  `json:"type"`
	Style      OptionStyle `json:"style"`
	Spot       float64     `json:"spot"`       // 标的现价 S0
	Strike     float64     `json:"strike"`     // 执行价格 K
	Maturity   float64     `json:"maturity"`   // 到期时间 (年)
	Volatility float64     `json:"volatility"` // 年化波动率
	Rate       float64     `json:"rate"`       // 无风险利率 (连续复利)
	Dividend   float64     `json:"dividend"`   // 股息率 (连续复利)
}

// NewOptionContract 校验入参并构造期权合约。
// 现价、执行价、到期时间与波动率必须为正, 利率与股息率允许为零或负值。
func NewOptionContract(symbol string, optionType OptionType, style OptionStyle, spot, strike, maturity, volatility, rate, dividend float64) (*OptionContract, error) {
	switch optionType {
	case OptionTypeCall, OptionTypePut:
	default:
		return nil, ErrInvalidOptionType
	}

	switch style {
	case OptionStyleEuropean, OptionStyleAmerican:
	default:
		return nil, ErrInvalidOptionStyle
	}

	if spot <= 0 || strike <= 0 || maturity <= 0 || volatility <= 0 {
		return nil, ErrInvalidContractInput
	}

	return &OptionContract{
		Symbol:     symbol,
		Type:       optionType,
		Style:      style,
		Spot:       spot,
		Strike:     strike,
		Maturity:   maturity,
		Volatility: volatility,
		Rate:       rate,
		Dividend:   dividend,
	}, nil
}

// TypeFactor 返回类型因子: 看涨 +1, 看跌 -1。
// 定价公式以该因子统一看涨与看跌两个分支。
func (c *OptionContract) TypeFactor() float64 {
	if c.Type == OptionTypePut {
		return -1
	}

	return 1
}

// HasClosedForm 判断合约是否存在闭式解。
// 仅欧式期权满足 Black-Scholes-Merton 解析定价前提。
func (c *OptionContract) HasClosedForm() bool {
	return c.Style == OptionStyleEuropean
}

// ExerciseValue 返回 t 时刻、标的价为 spot 时立即行权的价值。
// 欧式期权在到期前行权价值为零; 行权价值永不为负。
func (c *OptionContract) ExerciseValue(t, spot float64) float64 {
	if c.Style == OptionStyleEuropean && t < c.Maturity {
		return 0
	}

	return math.Max(c.TypeFactor()*(spot-c.Strike), 0)
}
