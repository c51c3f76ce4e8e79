package domain

import "math"

// Newton-Raphson 迭代参数
const (
	volMaxIterations = 100
	volTolerance     = 1e-4  // 价格误差容限
	volMinVega       = 1e-10 // vega 低于该值时导数失效
	volFloor         = 1e-4  // 迭代越过零轴后的回落下界
)

// ImpliedVolatility 由观测到的市场价反解隐含波动率。
// 合约自带的波动率作为迭代初值; 迭代在价格误差进入容限时收敛,
// vega 消失或迭代预算耗尽时返回不收敛错误。
func ImpliedVolatility(contract *OptionContract, marketPrice float64) (float64, error) {
	if contract == nil {
		return 0, ErrMissingContract
	}

	if !contract.HasClosedForm() {
		return 0, ErrNoClosedForm
	}

	if marketPrice <= 0 {
		return 0, ErrInvalidMarketPrice
	}

	sigma := contract.Volatility

	for i := 0; i < volMaxIterations; i++ {
		trial := *contract
		trial.Volatility = sigma

		pricer, err := NewAnalyticPricer(&trial)
		if err != nil {
			return 0, err
		}

		diff := pricer.Price() - marketPrice
		if math.Abs(diff) < volTolerance {
			return sigma, nil
		}

		vega := pricer.Vega()
		if vega < volMinVega {
			return 0, ErrVolatilityNotConverged
		}

		sigma -= diff / vega
		if sigma <= 0 {
			sigma = volFloor
		}
	}

	return 0, ErrVolatilityNotConverged
}
