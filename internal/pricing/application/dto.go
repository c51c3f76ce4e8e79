package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// GreeksDTO 敏感度查询结果
type GreeksDTO struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// TraceDTO 公式推导结果
// Steps 的每一步是一组 LaTeX 行: 符号, 公式, 代入式, 数值。
type TraceDTO struct {
	Quantity string     `json:"quantity"`
	Value    float64    `json:"value"`
	Steps    [][]string `json:"steps"`
}

// LatticeNodeDTO 网格节点
type LatticeNodeDTO struct {
	I         int     `json:"i"`
	J         int     `json:"j"`
	S         float64 `json:"s"`
	V         float64 `json:"v"`
	Exercised bool    `json:"exercised"`
}

// LatticeDTO 网格估值结果
type LatticeDTO struct {
	Price     float64          `json:"price"`
	TimeSteps int              `json:"time_steps"`
	DeltaT    float64          `json:"delta_t"`
	U         float64          `json:"u"`
	D         float64          `json:"d"`
	P         float64          `json:"p"`
	Nodes     []LatticeNodeDTO `json:"nodes"`
}

// BatchValuationResult 批量估值汇总
type BatchValuationResult struct {
	BatchID      string                    `json:"batch_id"`
	Results      []*domain.ValuationResult `json:"results"`
	SuccessCount int                       `json:"success_count"`
	FailureCount int                       `json:"failure_count"`
	AverageTime  float64                   `json:"average_time"`
}

func toLatticeDTO(calc *domain.LatticeCalculation) *LatticeDTO {
	nodes := make([]LatticeNodeDTO, len(calc.Nodes))
	for i, n := range calc.Nodes {
		nodes[i] = LatticeNodeDTO{
			I:         n.I,
			J:         n.J,
			S:         n.S,
			V:         n.V,
			Exercised: n.Exercised,
		}
	}
	return &LatticeDTO{
		Price:     calc.Root().V,
		TimeSteps: calc.TimeSteps,
		DeltaT:    calc.DeltaT,
		U:         calc.U,
		D:         calc.D,
		P:         calc.P,
		Nodes:     nodes,
	}
}
