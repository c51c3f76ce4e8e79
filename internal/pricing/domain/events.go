package domain

import "time"

const (
	OptionValuedEventType            = "OptionValued"
	GreeksCalculatedEventType        = "GreeksCalculated"
	ImpliedVolatilitySolvedEventType = "ImpliedVolatilitySolved"
	BatchValuationCompletedEventType = "BatchValuationCompleted"
)

// OptionValuedEvent 期权估值完成事件
type OptionValuedEvent struct {
	Symbol       string          `json:"symbol"`
	OptionType   OptionType      `json:"option_type"`
	OptionStyle  OptionStyle     `json:"option_style"`
	Method       ValuationMethod `json:"method"`
	Spot         float64         `json:"spot"`
	Strike       float64         `json:"strike"`
	Maturity     float64         `json:"maturity"`
	Volatility   float64         `json:"volatility"`
	Rate         float64         `json:"rate"`
	Dividend     float64         `json:"dividend"`
	TimeSteps    int             `json:"time_steps"`
	Price        float64         `json:"price"`
	CalculatedAt int64           `json:"calculated_at"`
	OccurredOn   time.Time       `json:"occurred_on"`
}

// GreeksCalculatedEvent 敏感度计算完成事件
type GreeksCalculatedEvent struct {
	Symbol       string     `json:"symbol"`
	OptionType   OptionType `json:"option_type"`
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	Delta        float64    `json:"delta"`
	Gamma        float64    `json:"gamma"`
	Vega         float64    `json:"vega"`
	Theta        float64    `json:"theta"`
	Rho          float64    `json:"rho"`
	CalculatedAt int64      `json:"calculated_at"`
	OccurredOn   time.Time  `json:"occurred_on"`
}

// ImpliedVolatilitySolvedEvent 隐含波动率求解完成事件
type ImpliedVolatilitySolvedEvent struct {
	Symbol            string     `json:"symbol"`
	OptionType        OptionType `json:"option_type"`
	Spot              float64    `json:"spot"`
	Strike            float64    `json:"strike"`
	Maturity          float64    `json:"maturity"`
	MarketPrice       float64    `json:"market_price"`
	ImpliedVolatility float64    `json:"implied_volatility"`
	SolvedAt          int64      `json:"solved_at"`
	OccurredOn        time.Time  `json:"occurred_on"`
}

// BatchValuationCompletedEvent 批量估值完成事件
type BatchValuationCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	Symbols        []string  `json:"symbols"`
	TotalContracts int       `json:"total_contracts"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    int64     `json:"completed_at"`
	OccurredOn     time.Time `json:"occurred_on"`
}
