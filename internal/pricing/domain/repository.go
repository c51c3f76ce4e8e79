package domain

import "context"

// ValuationRepository 估值结果仓储接口
type ValuationRepository interface {
	// WithTx 在事务中执行 fn, fn 内通过 ctx 取得事务句柄。
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
	// Save 持久化估值结果。
	Save(ctx context.Context, result *ValuationResult) error
	// GetLatest 返回标的最近一次估值, 不存在时返回 (nil, nil)。
	GetLatest(ctx context.Context, symbol string) (*ValuationResult, error)
	// GetHistory 按时间倒序返回标的最近 limit 条估值。
	GetHistory(ctx context.Context, symbol string, limit int) ([]*ValuationResult, error)
}
