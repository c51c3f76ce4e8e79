package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// 推导输出的缺省精度
const (
	defaultTraceDigits = 4
	defaultTraceMode   = PrecisionDecimalPlaces
)

// AnalyticPricer Black-Scholes-Merton 解析定价器。
// 以类型因子 φ (看涨 +1, 看跌 -1) 合并看涨与看跌分支,
// 数值结果与 LaTeX 推导由同一组中间参量产生。
type AnalyticPricer struct {
	contract *OptionContract
	phi      float64
	normal   StandardNormal
	digits   int
	mode     PrecisionMode
}

// NewAnalyticPricer 构造解析定价器, 仅接受存在闭式解的合约。
func NewAnalyticPricer(contract *OptionContract) (*AnalyticPricer, error) {
	if contract == nil {
		return nil, ErrMissingContract
	}

	if !contract.HasClosedForm() {
		return nil, ErrNoClosedForm
	}

	return &AnalyticPricer{
		contract: contract,
		phi:      contract.TypeFactor(),
		digits:   defaultTraceDigits,
		mode:     defaultTraceMode,
	}, nil
}

// SetTracePrecision 设置推导输出的数值精度, 不影响数值计算本身。
func (p *AnalyticPricer) SetTracePrecision(digits int, mode PrecisionMode) error {
	if err := validatePrecision(digits, mode); err != nil {
		return err
	}

	p.digits = digits
	p.mode = mode

	return nil
}

// Contract 返回定价器绑定的合约。
func (p *AnalyticPricer) Contract() *OptionContract {
	return p.contract
}

// D 返回中间参量 d1 或 d2, 下标越界返回错误。
func (p *AnalyticPricer) D(index int) (float64, error) {
	switch index {
	case 1:
		return p.d1(), nil
	case 2:
		return p.d2(), nil
	default:
		return 0, ErrInvalidDIndex
	}
}

func (p *AnalyticPricer) d1() float64 {
	c := p.contract

	return (math.Log(c.Spot/c.Strike) + (c.Rate-c.Dividend+c.Volatility*c.Volatility/2)*c.Maturity) /
		(c.Volatility * math.Sqrt(c.Maturity))
}

func (p *AnalyticPricer) d2() float64 {
	return p.d1() - p.contract.Volatility*math.Sqrt(p.contract.Maturity)
}

// Price 期权现值。
func (p *AnalyticPricer) Price() float64 {
	c := p.contract

	return p.phi*c.Spot*math.Exp(-c.Dividend*c.Maturity)*p.normal.CDF(p.phi*p.d1()) -
		p.phi*c.Strike*math.Exp(-c.Rate*c.Maturity)*p.normal.CDF(p.phi*p.d2())
}

// Delta 现值对标的价格的一阶敏感度。
func (p *AnalyticPricer) Delta() float64 {
	return p.phi * math.Exp(-p.contract.Dividend*p.contract.Maturity) * p.normal.CDF(p.phi*p.d1())
}

// Gamma 现值对标的价格的二阶敏感度, 看涨看跌同值。
func (p *AnalyticPricer) Gamma() float64 {
	c := p.contract

	return math.Exp(-c.Dividend*c.Maturity) * p.normal.PDF(p.d1()) /
		(c.Spot * c.Volatility * math.Sqrt(c.Maturity))
}

// Vega 现值对波动率的敏感度, 看涨看跌同值。
func (p *AnalyticPricer) Vega() float64 {
	c := p.contract

	return c.Spot * math.Exp(-c.Dividend*c.Maturity) * p.normal.PDF(p.d1()) * math.Sqrt(c.Maturity)
}

// Theta 现值对时间流逝的敏感度 (每年)。
func (p *AnalyticPricer) Theta() float64 {
	c := p.contract
	d1, d2 := p.d1(), p.d2()

	return -math.Exp(-c.Dividend*c.Maturity)*c.Spot*p.normal.PDF(d1)*c.Volatility/(2*math.Sqrt(c.Maturity)) -
		p.phi*c.Rate*c.Strike*math.Exp(-c.Rate*c.Maturity)*p.normal.CDF(p.phi*d2) +
		p.phi*c.Dividend*c.Spot*math.Exp(-c.Dividend*c.Maturity)*p.normal.CDF(p.phi*d1)
}

// Rho 现值对无风险利率的敏感度。
func (p *AnalyticPricer) Rho() float64 {
	c := p.contract

	return p.phi * c.Strike * c.Maturity * math.Exp(-c.Rate*c.Maturity) * p.normal.CDF(p.phi*p.d2())
}

// DTrace 返回 d1 或 d2 的推导; d2 的推导包含其前置 d1 步骤。
func (p *AnalyticPricer) DTrace(index int) (CalculationTrace, error) {
	switch index {
	case 1:
		return p.assemble(p.dStep(1))
	case 2:
		return p.assemble(p.dStep(1), p.dStep(2))
	default:
		return nil, ErrInvalidDIndex
	}
}

// PriceTrace 返回现值的完整推导: d1, d2, 两个分布值与最终代价公式。
func (p *AnalyticPricer) PriceTrace() (CalculationTrace, error) {
	c := p.contract
	symbol, formula := SymbolPriceCall, FormulaPriceCall
	cdfKey1, cdfKey2 := KeyCdfD1, KeyCdfD2

	if p.phi < 0 {
		symbol, formula = SymbolPricePut, FormulaPricePut
		cdfKey1, cdfKey2 = KeyCdfNegD1, KeyCdfNegD2
	}

	final := p.finalStep(symbol, formula, []traceEntry{
		{KeySpot, c.Spot},
		{KeyStrike, c.Strike},
		{KeyRate, c.Rate},
		{KeyDividend, c.Dividend},
		{KeyMaturity, c.Maturity},
		{cdfKey1, p.normal.CDF(p.phi * p.d1())},
		{cdfKey2, p.normal.CDF(p.phi * p.d2())},
	}, p.Price())

	return p.assemble(p.dStep(1), p.dStep(2), p.cdfStep(1), p.cdfStep(2), final)
}

// DeltaTrace 返回 Delta 的推导。
func (p *AnalyticPricer) DeltaTrace() (CalculationTrace, error) {
	c := p.contract
	formula, cdfKey := FormulaDeltaCall, KeyCdfD1

	if p.phi < 0 {
		formula, cdfKey = FormulaDeltaPut, KeyCdfNegD1
	}

	final := p.finalStep(SymbolDelta, formula, []traceEntry{
		{KeyDividend, c.Dividend},
		{KeyMaturity, c.Maturity},
		{cdfKey, p.normal.CDF(p.phi * p.d1())},
	}, p.Delta())

	return p.assemble(p.dStep(1), p.cdfStep(1), final)
}

// GammaTrace 返回 Gamma 的推导。
func (p *AnalyticPricer) GammaTrace() (CalculationTrace, error) {
	c := p.contract

	final := p.finalStep(SymbolGamma, FormulaGamma, []traceEntry{
		{KeySpot, c.Spot},
		{KeyDividend, c.Dividend},
		{KeyMaturity, c.Maturity},
		{KeyVolatility, c.Volatility},
		{KeyPdfD1, p.normal.PDF(p.d1())},
	}, p.Gamma())

	return p.assemble(p.dStep(1), p.pdfStep(), final)
}

// VegaTrace 返回 Vega 的推导。
func (p *AnalyticPricer) VegaTrace() (CalculationTrace, error) {
	c := p.contract

	final := p.finalStep(SymbolVega, FormulaVega, []traceEntry{
		{KeySpot, c.Spot},
		{KeyDividend, c.Dividend},
		{KeyMaturity, c.Maturity},
		{KeyPdfD1, p.normal.PDF(p.d1())},
	}, p.Vega())

	return p.assemble(p.dStep(1), p.pdfStep(), final)
}

// ThetaTrace 返回 Theta 的推导。
func (p *AnalyticPricer) ThetaTrace() (CalculationTrace, error) {
	c := p.contract
	formula, cdfKey1, cdfKey2 := FormulaThetaCall, KeyCdfD1, KeyCdfD2

	if p.phi < 0 {
		formula, cdfKey1, cdfKey2 = FormulaThetaPut, KeyCdfNegD1, KeyCdfNegD2
	}

	final := p.finalStep(SymbolTheta, formula, []traceEntry{
		{KeySpot, c.Spot},
		{KeyStrike, c.Strike},
		{KeyRate, c.Rate},
		{KeyDividend, c.Dividend},
		{KeyMaturity, c.Maturity},
		{KeyVolatility, c.Volatility},
		{KeyPdfD1, p.normal.PDF(p.d1())},
		{cdfKey1, p.normal.CDF(p.phi * p.d1())},
		{cdfKey2, p.normal.CDF(p.phi * p.d2())},
	}, p.Theta())

	return p.assemble(p.dStep(1), p.dStep(2), p.cdfStep(1), p.cdfStep(2), p.pdfStep(), final)
}

// RhoTrace 返回 Rho 的推导。
func (p *AnalyticPricer) RhoTrace() (CalculationTrace, error) {
	c := p.contract
	formula, cdfKey := FormulaRhoCall, KeyCdfD2

	if p.phi < 0 {
		formula, cdfKey = FormulaRhoPut, KeyCdfNegD2
	}

	final := p.finalStep(SymbolRho, formula, []traceEntry{
		{KeyStrike, c.Strike},
		{KeyRate, c.Rate},
		{KeyMaturity, c.Maturity},
		{cdfKey, p.normal.CDF(p.phi * p.d2())},
	}, p.Rho())

	return p.assemble(p.dStep(1), p.dStep(2), p.cdfStep(2), final)
}

// traceEntry 推导代入项
type traceEntry struct {
	key   string
	value float64
}

// stepResult 推导步骤与其组装错误的配对, 便于统一收集。
type stepResult struct {
	step CalculationStep
	err  error
}

// dStep 组装 d1 或 d2 的单条推导步骤。
func (p *AnalyticPricer) dStep(index int) stepResult {
	c := p.contract

	switch index {
	case 1:
		values, err := p.traceValues([]traceEntry{
			{KeySpot, c.Spot},
			{KeyStrike, c.Strike},
			{KeyRate, c.Rate},
			{KeyDividend, c.Dividend},
			{KeyVolatility, c.Volatility},
			{KeyMaturity, c.Maturity},
		})
		if err != nil {
			return stepResult{err: err}
		}

		step, err := Solve([]string{KeyD1, FormulaD1}, values, p.answer(p.d1()))

		return stepResult{step: step, err: err}
	case 2:
		values, err := p.traceValues([]traceEntry{
			{KeyD1, p.d1()},
			{KeyVolatility, c.Volatility},
			{KeyMaturity, c.Maturity},
		})
		if err != nil {
			return stepResult{err: err}
		}

		step, err := Solve([]string{KeyD2, FormulaD2}, values, p.answer(p.d2()))

		return stepResult{step: step, err: err}
	default:
		return stepResult{err: ErrInvalidDIndex}
	}
}

// cdfStep 组装分布函数值 N(±d) 的推导步骤。
func (p *AnalyticPricer) cdfStep(index int) stepResult {
	d, err := p.D(index)
	if err != nil {
		return stepResult{err: err}
	}

	symbol, key := KeyCdfD1, KeyD1
	if index == 2 {
		symbol, key = KeyCdfD2, KeyD2
	}

	if p.phi < 0 {
		symbol = KeyCdfNegD1
		if index == 2 {
			symbol = KeyCdfNegD2
		}
	}

	value, err := p.traceNumber(key, d)
	if err != nil {
		return stepResult{err: err}
	}

	step, err := Solve([]string{symbol}, []*EquationValue{value}, p.answer(p.normal.CDF(p.phi*d)))

	return stepResult{step: step, err: err}
}

// pdfStep 组装密度函数值 N'(d1) 的推导步骤。
func (p *AnalyticPricer) pdfStep() stepResult {
	d1 := p.d1()

	value, err := p.traceNumber(KeyD1, d1)
	if err != nil {
		return stepResult{err: err}
	}

	step, err := Solve([]string{KeyPdfD1}, []*EquationValue{value}, p.answer(p.normal.PDF(d1)))

	return stepResult{step: step, err: err}
}

// finalStep 组装末段推导: 符号、公式、代入与最终结果。
func (p *AnalyticPricer) finalStep(symbol, formula string, entries []traceEntry, result float64) stepResult {
	values, err := p.traceFactors(entries)
	if err != nil {
		return stepResult{err: err}
	}

	step, err := Solve([]string{symbol, formula}, values, p.answer(result))

	return stepResult{step: step, err: err}
}

// assemble 收集各步骤, 任一步骤出错即整体失败。
func (p *AnalyticPricer) assemble(results ...stepResult) (CalculationTrace, error) {
	trace := make(CalculationTrace, 0, len(results))

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}

		trace = append(trace, r.step)
	}

	return trace, nil
}

// traceValues 批量构造推导代入值。
func (p *AnalyticPricer) traceValues(entries []traceEntry) ([]*EquationValue, error) {
	values := make([]*EquationValue, 0, len(entries))

	for _, entry := range entries {
		value, err := p.traceNumber(entry.key, entry.value)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// traceFactors 批量构造末段公式的代入值, 每个因子统一加括号:
// 末段公式靠并列表示乘法, 相邻的裸数字会粘连成一个数 (如 e^{-qτ} 的指数)。
func (p *AnalyticPricer) traceFactors(entries []traceEntry) ([]*EquationValue, error) {
	values, err := p.traceValues(entries)
	if err != nil {
		return nil, err
	}

	for i, value := range values {
		wrapped, err := value.WithDelimiter(DelimiterParenthesis)
		if err != nil {
			return nil, err
		}

		values[i] = wrapped
	}

	return values, nil
}

// traceNumber 构造单个推导代入值, 负数加括号避免符号粘连。
func (p *AnalyticPricer) traceNumber(key string, value float64) (*EquationValue, error) {
	delimiter := DelimiterNone
	if value < 0 {
		delimiter = DelimiterParenthesis
	}

	return NewEquationValue(EquationValueInput{
		Key:       key,
		Number:    &value,
		Delimiter: delimiter,
		Digits:    p.digits,
		Mode:      p.mode,
	})
}

// answer 按推导精度渲染最终结果。
func (p *AnalyticPricer) answer(value float64) string {
	return formatNumber(decimal.NewFromFloat(value), p.digits, p.mode)
}
