package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// ValuationModel 估值结果数据库模型
type ValuationModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Symbol       string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	OptionType   string    `gorm:"column:option_type;type:varchar(8);not null"`
	OptionStyle  string    `gorm:"column:option_style;type:varchar(16);not null"`
	Method       string    `gorm:"column:method;type:varchar(16);not null"`
	Spot         string    `gorm:"column:spot;type:decimal(32,18);not null"`
	Strike       string    `gorm:"column:strike;type:decimal(32,18);not null"`
	Maturity     string    `gorm:"column:maturity;type:decimal(32,18);not null"`
	Volatility   string    `gorm:"column:volatility;type:decimal(32,18);not null"`
	Rate         string    `gorm:"column:rate;type:decimal(32,18)"`
	Dividend     string    `gorm:"column:dividend;type:decimal(32,18)"`
	TimeSteps    int       `gorm:"column:time_steps"`
	Price        string    `gorm:"column:price;type:decimal(32,18);not null"`
	Delta        string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma        string    `gorm:"column:gamma;type:decimal(32,18)"`
	Vega         string    `gorm:"column:vega;type:decimal(32,18)"`
	Theta        string    `gorm:"column:theta;type:decimal(32,18)"`
	Rho          string    `gorm:"column:rho;type:decimal(32,18)"`
	HasGreeks    bool      `gorm:"column:has_greeks"`
	CalculatedAt int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
}

func (ValuationModel) TableName() string { return "valuation_results" }

// mapping helpers

func toValuationModel(res *domain.ValuationResult) *ValuationModel {
	if res == nil {
		return nil
	}
	return &ValuationModel{
		ID:           res.ID,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
		Symbol:       res.Symbol,
		OptionType:   string(res.OptionType),
		OptionStyle:  string(res.OptionStyle),
		Method:       string(res.Method),
		Spot:         res.Spot.String(),
		Strike:       res.Strike.String(),
		Maturity:     res.Maturity.String(),
		Volatility:   res.Volatility.String(),
		Rate:         res.Rate.String(),
		Dividend:     res.Dividend.String(),
		TimeSteps:    res.TimeSteps,
		Price:        res.Price.String(),
		Delta:        res.Delta.String(),
		Gamma:        res.Gamma.String(),
		Vega:         res.Vega.String(),
		Theta:        res.Theta.String(),
		Rho:          res.Rho.String(),
		HasGreeks:    res.HasGreeks,
		CalculatedAt: res.CalculatedAt,
	}
}

func toValuation(m *ValuationModel) *domain.ValuationResult {
	if m == nil {
		return nil
	}
	spot, _ := decimal.NewFromString(m.Spot)
	strike, _ := decimal.NewFromString(m.Strike)
	maturity, _ := decimal.NewFromString(m.Maturity)
	volatility, _ := decimal.NewFromString(m.Volatility)
	rate, _ := decimal.NewFromString(m.Rate)
	dividend, _ := decimal.NewFromString(m.Dividend)
	price, _ := decimal.NewFromString(m.Price)
	delta, _ := decimal.NewFromString(m.Delta)
	gamma, _ := decimal.NewFromString(m.Gamma)
	vega, _ := decimal.NewFromString(m.Vega)
	theta, _ := decimal.NewFromString(m.Theta)
	rho, _ := decimal.NewFromString(m.Rho)

	return &domain.ValuationResult{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Symbol:       m.Symbol,
		OptionType:   domain.OptionType(m.OptionType),
		OptionStyle:  domain.OptionStyle(m.OptionStyle),
		Method:       domain.ValuationMethod(m.Method),
		Spot:         spot,
		Strike:       strike,
		Maturity:     maturity,
		Volatility:   volatility,
		Rate:         rate,
		Dividend:     dividend,
		TimeSteps:    m.TimeSteps,
		Price:        price,
		Delta:        delta,
		Gamma:        gamma,
		Vega:         vega,
		Theta:        theta,
		Rho:          rho,
		HasGreeks:    m.HasGreeks,
		CalculatedAt: m.CalculatedAt,
	}
}
