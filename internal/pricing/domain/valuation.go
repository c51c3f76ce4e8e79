package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationMethod 估值方法
type ValuationMethod string

const (
	ValuationMethodAnalytic ValuationMethod = "ANALYTIC" // Black-Scholes-Merton 闭式解
	ValuationMethodLattice  ValuationMethod = "LATTICE"  // Cox-Ross-Rubinstein 二叉树
)

// ValuationResult 估值结果实体
// 记录一次定价的合约快照、方法与输出, 金额与敏感度以 decimal 落库。
type ValuationResult struct {
	ID           uint            `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Symbol       string          `json:"symbol"`
	OptionType   OptionType      `json:"option_type"`
	OptionStyle  OptionStyle     `json:"option_style"`
	Method       ValuationMethod `json:"method"`
	Spot         decimal.Decimal `json:"spot"`
	Strike       decimal.Decimal `json:"strike"`
	Maturity     decimal.Decimal `json:"maturity"`
	Volatility   decimal.Decimal `json:"volatility"`
	Rate         decimal.Decimal `json:"rate"`
	Dividend     decimal.Decimal `json:"dividend"`
	TimeSteps    int             `json:"time_steps"` // 网格估值时的步数, 解析估值为 0
	Price        decimal.Decimal `json:"price"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Vega         decimal.Decimal `json:"vega"`
	Theta        decimal.Decimal `json:"theta"`
	Rho          decimal.Decimal `json:"rho"`
	HasGreeks    bool            `json:"has_greeks"` // 美式网格估值不产生敏感度
	CalculatedAt int64           `json:"calculated_at"`
}
