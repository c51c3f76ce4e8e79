package application

// ValueOptionCommand 单笔估值命令
type ValueOptionCommand struct {
	Symbol      string
	OptionType  string
	OptionStyle string
	Method      string // 留空时欧式走解析解, 美式走网格
	Spot        float64
	Strike      float64
	Maturity    float64
	Volatility  float64
	Rate        float64
	Dividend    float64
	TimeSteps   int // 网格估值步数, 留空用缺省值
}

// BatchValueOptionsCommand 批量估值命令
type BatchValueOptionsCommand struct {
	BatchID   string
	Contracts []ValueOptionCommand
}

// SolveImpliedVolatilityCommand 隐含波动率求解命令
type SolveImpliedVolatilityCommand struct {
	Symbol       string
	OptionType   string
	Spot         float64
	Strike       float64
	Maturity     float64
	Rate         float64
	Dividend     float64
	MarketPrice  float64
	InitialGuess float64 // 迭代初值, 留空用缺省值
}

// GreeksQuery 敏感度查询参数
type GreeksQuery struct {
	OptionType string
	Spot       float64
	Strike     float64
	Maturity   float64
	Volatility float64
	Rate       float64
	Dividend   float64
}

// ExplainQuery 推导查询参数
// Quantity 取 price/delta/gamma/vega/theta/rho/d1/d2 之一。
type ExplainQuery struct {
	Quantity   string
	OptionType string
	Spot       float64
	Strike     float64
	Maturity   float64
	Volatility float64
	Rate       float64
	Dividend   float64
	Digits     *int
	Mode       string
}

// LatticeQuery 网格估值查询参数
type LatticeQuery struct {
	OptionType  string
	OptionStyle string
	Spot        float64
	Strike      float64
	Maturity    float64
	Volatility  float64
	Rate        float64
	Dividend    float64
	TimeSteps   int
}
