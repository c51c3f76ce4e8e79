package domain

import "math"

// LatticeNode 二叉树网格节点
// I 为时间层序号, J 为该层内上行次数; Exercised 标记该节点
// 是否以立即行权价值定价。
type LatticeNode struct {
	I         int     `json:"i"`
	J         int     `json:"j"`
	S         float64 `json:"s"` // 标的价格
	V         float64 `json:"v"` // 期权价值
	Exercised bool    `json:"exercised"`
}

// LatticeCalculation 一次网格定价的完整快照
// Nodes 按 (层, 层内序号) 展平成三角数组, 根节点在下标 0。
type LatticeCalculation struct {
	TimeSteps int           `json:"time_steps"`
	DeltaT    float64       `json:"delta_t"`
	U         float64       `json:"u"` // 上行因子
	D         float64       `json:"d"` // 下行因子
	P         float64       `json:"p"` // 风险中性上行概率
	Nodes     []LatticeNode `json:"nodes"`
}

// Root 返回根节点, 其 V 即现值。
func (l *LatticeCalculation) Root() LatticeNode {
	return l.Nodes[0]
}

// Node 返回第 i 层第 j 个节点。
func (l *LatticeCalculation) Node(i, j int) LatticeNode {
	return l.Nodes[latticeNodeIndex(i, j)]
}

// LatticePricer Cox-Ross-Rubinstein 二叉树定价器。
// 正向铺设标的价格网格, 逆向以风险中性概率贴现回根节点;
// 美式期权在每个内部节点比较继续持有与立即行权。
type LatticePricer struct {
	contract  *OptionContract
	timeSteps int
}

// NewLatticePricer 构造网格定价器, 步数必须为正。
func NewLatticePricer(contract *OptionContract, timeSteps int) (*LatticePricer, error) {
	if contract == nil {
		return nil, ErrMissingContract
	}

	if timeSteps <= 0 {
		return nil, ErrInvalidTimeSteps
	}

	return &LatticePricer{contract: contract, timeSteps: timeSteps}, nil
}

// Price 返回网格定价的现值。
func (p *LatticePricer) Price() float64 {
	return p.compute().Root().V
}

// Calculation 返回网格定价的完整快照。
// 每次调用重新计算并返回独立副本, 调用方可任意修改。
func (p *LatticePricer) Calculation() *LatticeCalculation {
	return p.compute()
}

func (p *LatticePricer) compute() *LatticeCalculation {
	c := p.contract
	n := p.timeSteps

	dt := c.Maturity / float64(n)
	u := math.Exp(c.Volatility * math.Sqrt(dt))
	d := math.Exp(-c.Volatility * math.Sqrt(dt))
	growth := math.Exp((c.Rate - c.Dividend) * dt)
	prob := (growth - d) / (u - d)
	discount := math.Exp(-c.Rate * dt)

	nodes := make([]LatticeNode, latticeNodeCount(n))

	// 正向: 铺设标的价格
	for i := 0; i <= n; i++ {
		for j := 0; j <= i; j++ {
			idx := latticeNodeIndex(i, j)
			nodes[idx] = LatticeNode{
				I: i,
				J: j,
				S: c.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(i-j)),
			}
		}
	}

	// 逆向: 从到期层贴现回根节点
	for i := n; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			idx := latticeNodeIndex(i, j)
			node := &nodes[idx]

			if i == n {
				node.V = c.ExerciseValue(c.Maturity, node.S)
				node.Exercised = node.V > 0

				continue
			}

			down := nodes[idx+i+1].V
			up := nodes[idx+i+2].V
			continuation := discount * (prob*up + (1-prob)*down)

			var early float64
			if c.Style == OptionStyleAmerican {
				early = c.ExerciseValue(float64(i)*dt, node.S)
			}

			node.V = math.Max(continuation, early)
			node.Exercised = early > continuation
		}
	}

	return &LatticeCalculation{
		TimeSteps: n,
		DeltaT:    dt,
		U:         u,
		D:         d,
		P:         prob,
		Nodes:     nodes,
	}
}

// latticeNodeIndex 三角展平下标: 第 i 层第 j 个节点。
// 该节点的下行子节点位于 idx+i+1, 上行子节点位于 idx+i+2。
func latticeNodeIndex(i, j int) int {
	return i*(i+1)/2 + j
}

// latticeNodeCount n 步网格的节点总数 (n+1)(n+2)/2。
func latticeNodeCount(n int) int {
	return (n + 1) * (n + 2) / 2
}
