package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/messagequeue"
	"github.com/wyfcoding/pkg/xerrors"
)

const (
	defaultLatticeSteps    = 500 // 网格估值缺省步数
	defaultVolatilityGuess = 0.3 // 隐含波动率迭代缺省初值
)

// PricingCommandService 处理估值相关的命令操作
// 使用 Outbox 发布领域事件

type PricingCommandService struct {
	repo      domain.ValuationRepository
	publisher messagequeue.EventPublisher
}

// NewPricingCommandService 创建新的 PricingCommandService 实例
func NewPricingCommandService(repo domain.ValuationRepository, publisher messagequeue.EventPublisher) *PricingCommandService {
	return &PricingCommandService{
		repo:      repo,
		publisher: publisher,
	}
}

// ValueOption 单笔期权估值
// 行权方式缺省为欧式; 估值方法缺省时欧式走解析解, 美式走网格。
func (c *PricingCommandService) ValueOption(ctx context.Context, cmd ValueOptionCommand) (*domain.ValuationResult, error) {
	if cmd.Symbol == "" {
		return nil, xerrors.InvalidArg("symbol is required")
	}
	if cmd.OptionStyle == "" {
		cmd.OptionStyle = string(domain.OptionStyleEuropean)
	}

	contract, err := domain.NewOptionContract(cmd.Symbol, domain.OptionType(cmd.OptionType), domain.OptionStyle(cmd.OptionStyle),
		cmd.Spot, cmd.Strike, cmd.Maturity, cmd.Volatility, cmd.Rate, cmd.Dividend)
	if err != nil {
		return nil, err
	}

	method := domain.ValuationMethod(cmd.Method)
	if method == "" {
		if contract.HasClosedForm() {
			method = domain.ValuationMethodAnalytic
		} else {
			method = domain.ValuationMethodLattice
		}
	}

	var result *domain.ValuationResult

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		tx := contextx.GetTx(txCtx)

		var analytic *domain.AnalyticPricer
		if contract.HasClosedForm() {
			pricer, pricerErr := domain.NewAnalyticPricer(contract)
			if pricerErr != nil {
				return pricerErr
			}
			analytic = pricer
		}

		// 根据估值方法计算现值
		var price float64
		timeSteps := 0
		switch method {
		case domain.ValuationMethodAnalytic:
			if analytic == nil {
				return domain.ErrNoClosedForm
			}
			price = analytic.Price()
		case domain.ValuationMethodLattice:
			timeSteps = cmd.TimeSteps
			if timeSteps <= 0 {
				timeSteps = defaultLatticeSteps
			}
			lattice, latticeErr := domain.NewLatticePricer(contract, timeSteps)
			if latticeErr != nil {
				return latticeErr
			}
			price = lattice.Price()
		default:
			return xerrors.InvalidArg("unsupported valuation method: " + cmd.Method)
		}

		// 敏感度只在闭式解下计算, 美式网格估值不产生敏感度
		var delta, gamma, vega, theta, rho float64
		hasGreeks := analytic != nil
		if hasGreeks {
			delta = analytic.Delta()
			gamma = analytic.Gamma()
			vega = analytic.Vega()
			theta = analytic.Theta()
			rho = analytic.Rho()
		}

		result = &domain.ValuationResult{
			Symbol:       contract.Symbol,
			OptionType:   contract.Type,
			OptionStyle:  contract.Style,
			Method:       method,
			Spot:         decimal.NewFromFloat(contract.Spot),
			Strike:       decimal.NewFromFloat(contract.Strike),
			Maturity:     decimal.NewFromFloat(contract.Maturity),
			Volatility:   decimal.NewFromFloat(contract.Volatility),
			Rate:         decimal.NewFromFloat(contract.Rate),
			Dividend:     decimal.NewFromFloat(contract.Dividend),
			TimeSteps:    timeSteps,
			Price:        decimal.NewFromFloat(price),
			Delta:        decimal.NewFromFloat(delta),
			Gamma:        decimal.NewFromFloat(gamma),
			Vega:         decimal.NewFromFloat(vega),
			Theta:        decimal.NewFromFloat(theta),
			Rho:          decimal.NewFromFloat(rho),
			HasGreeks:    hasGreeks,
			CalculatedAt: time.Now().Unix(),
		}

		// 保存估值结果
		if err := c.repo.Save(txCtx, result); err != nil {
			return err
		}

		if c.publisher == nil {
			return nil
		}

		valuedEvent := domain.OptionValuedEvent{
			Symbol:       contract.Symbol,
			OptionType:   contract.Type,
			OptionStyle:  contract.Style,
			Method:       method,
			Spot:         contract.Spot,
			Strike:       contract.Strike,
			Maturity:     contract.Maturity,
			Volatility:   contract.Volatility,
			Rate:         contract.Rate,
			Dividend:     contract.Dividend,
			TimeSteps:    timeSteps,
			Price:        price,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		if err := c.publisher.PublishInTx(txCtx, tx, domain.OptionValuedEventType, contract.Symbol, valuedEvent); err != nil {
			return err
		}

		if !hasGreeks {
			return nil
		}

		greeksEvent := domain.GreeksCalculatedEvent{
			Symbol:       contract.Symbol,
			OptionType:   contract.Type,
			Spot:         contract.Spot,
			Strike:       contract.Strike,
			Delta:        delta,
			Gamma:        gamma,
			Vega:         vega,
			Theta:        theta,
			Rho:          rho,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		return c.publisher.PublishInTx(txCtx, tx, domain.GreeksCalculatedEventType, contract.Symbol, greeksEvent)
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// BatchValueOptions 批量估值
func (c *PricingCommandService) BatchValueOptions(ctx context.Context, cmd BatchValueOptionsCommand) (*BatchValuationResult, error) {
	results := make([]*domain.ValuationResult, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		startTime := time.Now()
		result, err := c.ValueOption(ctx, contract)
		totalTime += time.Since(startTime).Seconds()

		if err != nil {
			failureCount++
			continue
		}

		results = append(results, result)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.BatchValuationCompletedEventType, cmd.BatchID, domain.BatchValuationCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		})
	}

	return &BatchValuationResult{
		BatchID:      cmd.BatchID,
		Results:      results,
		SuccessCount: successCount,
		FailureCount: failureCount,
		AverageTime:  avg,
	}, nil
}

// SolveImpliedVolatility 由观测市场价反解隐含波动率
// 反解依赖闭式解, 合约固定按欧式构造。
func (c *PricingCommandService) SolveImpliedVolatility(ctx context.Context, cmd SolveImpliedVolatilityCommand) (float64, error) {
	guess := cmd.InitialGuess
	if guess <= 0 {
		guess = defaultVolatilityGuess
	}

	contract, err := domain.NewOptionContract(cmd.Symbol, domain.OptionType(cmd.OptionType), domain.OptionStyleEuropean,
		cmd.Spot, cmd.Strike, cmd.Maturity, guess, cmd.Rate, cmd.Dividend)
	if err != nil {
		return 0, err
	}

	sigma, err := domain.ImpliedVolatility(contract, cmd.MarketPrice)
	if err != nil {
		return 0, err
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.ImpliedVolatilitySolvedEventType, cmd.Symbol, domain.ImpliedVolatilitySolvedEvent{
			Symbol:            cmd.Symbol,
			OptionType:        contract.Type,
			Spot:              cmd.Spot,
			Strike:            cmd.Strike,
			Maturity:          cmd.Maturity,
			MarketPrice:       cmd.MarketPrice,
			ImpliedVolatility: sigma,
			SolvedAt:          time.Now().Unix(),
			OccurredOn:        time.Now(),
		})
	}

	return sigma, nil
}

// 辅助函数：提取合约符号
func extractSymbols(contracts []ValueOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)

	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}

	return symbols
}
