package application

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/xerrors"
)

const defaultHistoryLimit = 20

// PricingQueryService 处理估值相关的查询操作
// 查询不落库、不发事件, 纯计算路径直接走领域定价器。
type PricingQueryService struct {
	repo domain.ValuationRepository
}

// NewPricingQueryService 创建新的 PricingQueryService 实例
func NewPricingQueryService(repo domain.ValuationRepository) *PricingQueryService {
	return &PricingQueryService{repo: repo}
}

// GetGreeks 计算欧式期权的现值与全部敏感度
func (q *PricingQueryService) GetGreeks(ctx context.Context, query GreeksQuery) (*GreeksDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	pricer, err := q.analyticPricer(query.OptionType, query.Spot, query.Strike, query.Maturity, query.Volatility, query.Rate, query.Dividend)
	if err != nil {
		return nil, err
	}

	return &GreeksDTO{
		Price: pricer.Price(),
		Delta: pricer.Delta(),
		Gamma: pricer.Gamma(),
		Vega:  pricer.Vega(),
		Theta: pricer.Theta(),
		Rho:   pricer.Rho(),
	}, nil
}

// ExplainValuation 返回指定量的 LaTeX 推导
// 支持 price/delta/gamma/vega/theta/rho/d1/d2。
func (q *PricingQueryService) ExplainValuation(ctx context.Context, query ExplainQuery) (*TraceDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	pricer, err := q.analyticPricer(query.OptionType, query.Spot, query.Strike, query.Maturity, query.Volatility, query.Rate, query.Dividend)
	if err != nil {
		return nil, err
	}

	if err := applyTracePrecision(pricer, query.Digits, query.Mode); err != nil {
		return nil, err
	}

	var (
		trace domain.CalculationTrace
		value float64
	)
	switch query.Quantity {
	case "price":
		value = pricer.Price()
		trace, err = pricer.PriceTrace()
	case "delta":
		value = pricer.Delta()
		trace, err = pricer.DeltaTrace()
	case "gamma":
		value = pricer.Gamma()
		trace, err = pricer.GammaTrace()
	case "vega":
		value = pricer.Vega()
		trace, err = pricer.VegaTrace()
	case "theta":
		value = pricer.Theta()
		trace, err = pricer.ThetaTrace()
	case "rho":
		value = pricer.Rho()
		trace, err = pricer.RhoTrace()
	case "d1":
		value, _ = pricer.D(1)
		trace, err = pricer.DTrace(1)
	case "d2":
		value, _ = pricer.D(2)
		trace, err = pricer.DTrace(2)
	default:
		return nil, xerrors.InvalidArg("unknown quantity: " + query.Quantity)
	}
	if err != nil {
		return nil, err
	}

	steps := make([][]string, len(trace))
	for i, step := range trace {
		steps[i] = append([]string(nil), step...)
	}

	return &TraceDTO{
		Quantity: query.Quantity,
		Value:    value,
		Steps:    steps,
	}, nil
}

// GetLatticeCalculation 返回完整的二叉树网格快照
// 行权方式缺省为欧式; 步数缺省与估值命令一致。
func (q *PricingQueryService) GetLatticeCalculation(ctx context.Context, query LatticeQuery) (*LatticeDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	style := query.OptionStyle
	if style == "" {
		style = string(domain.OptionStyleEuropean)
	}

	contract, err := domain.NewOptionContract("", domain.OptionType(query.OptionType), domain.OptionStyle(style),
		query.Spot, query.Strike, query.Maturity, query.Volatility, query.Rate, query.Dividend)
	if err != nil {
		return nil, err
	}

	timeSteps := query.TimeSteps
	if timeSteps <= 0 {
		timeSteps = defaultLatticeSteps
	}

	pricer, err := domain.NewLatticePricer(contract, timeSteps)
	if err != nil {
		return nil, err
	}

	return toLatticeDTO(pricer.Calculation()), nil
}

// GetLatestValuation 获取标的最近一次估值结果
func (q *PricingQueryService) GetLatestValuation(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if symbol == "" {
		return nil, xerrors.InvalidArg("symbol is required")
	}

	result, err := q.repo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, xerrors.NotFound("valuation not found: " + symbol)
	}

	return result, nil
}

// GetValuationHistory 获取标的估值历史, 按计算时间倒序
func (q *PricingQueryService) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*domain.ValuationResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if symbol == "" {
		return nil, xerrors.InvalidArg("symbol is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return q.repo.GetHistory(ctx, symbol, limit)
}

// analyticPricer 由查询参数构造欧式解析定价器, 纯查询不带标的符号。
func (q *PricingQueryService) analyticPricer(optionType string, spot, strike, maturity, volatility, rate, dividend float64) (*domain.AnalyticPricer, error) {
	contract, err := domain.NewOptionContract("", domain.OptionType(optionType), domain.OptionStyleEuropean,
		spot, strike, maturity, volatility, rate, dividend)
	if err != nil {
		return nil, err
	}

	return domain.NewAnalyticPricer(contract)
}

// applyTracePrecision 解析推导精度入参
// 两者皆缺省时沿用定价器默认; 只给位数按固定小数位处理;
// 非原样模式缺少位数视为非法。
func applyTracePrecision(pricer *domain.AnalyticPricer, digits *int, mode string) error {
	if digits == nil && mode == "" {
		return nil
	}

	m := domain.PrecisionMode(mode)
	if mode == "" {
		m = domain.PrecisionDecimalPlaces
	}

	d := 0
	if digits != nil {
		d = *digits
	} else if m != domain.PrecisionUnchanged {
		return domain.ErrInvalidPrecisionDigits
	}

	return pricer.SetTracePrecision(d, m)
}
