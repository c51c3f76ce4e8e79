package application

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/messagequeue"
)

// PricingService 估值门面服务。
type PricingService struct {
	Command *PricingCommandService
	Query   *PricingQueryService
}

// NewPricingService 构造函数。
func NewPricingService(repo domain.ValuationRepository, publisher messagequeue.EventPublisher) *PricingService {
	return &PricingService{
		Command: NewPricingCommandService(repo, publisher),
		Query:   NewPricingQueryService(repo),
	}
}

// --- Command Facade ---

func (s *PricingService) ValueOption(ctx context.Context, cmd ValueOptionCommand) (*domain.ValuationResult, error) {
	return s.Command.ValueOption(ctx, cmd)
}

func (s *PricingService) BatchValueOptions(ctx context.Context, cmd BatchValueOptionsCommand) (*BatchValuationResult, error) {
	return s.Command.BatchValueOptions(ctx, cmd)
}

func (s *PricingService) SolveImpliedVolatility(ctx context.Context, cmd SolveImpliedVolatilityCommand) (float64, error) {
	return s.Command.SolveImpliedVolatility(ctx, cmd)
}

// --- Query Facade ---

func (s *PricingService) GetGreeks(ctx context.Context, query GreeksQuery) (*GreeksDTO, error) {
	return s.Query.GetGreeks(ctx, query)
}

func (s *PricingService) ExplainValuation(ctx context.Context, query ExplainQuery) (*TraceDTO, error) {
	return s.Query.ExplainValuation(ctx, query)
}

func (s *PricingService) GetLatticeCalculation(ctx context.Context, query LatticeQuery) (*LatticeDTO, error) {
	return s.Query.GetLatticeCalculation(ctx, query)
}

func (s *PricingService) GetLatestValuation(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	return s.Query.GetLatestValuation(ctx, symbol)
}

func (s *PricingService) GetValuationHistory(ctx context.Context, symbol string, limit int) ([]*domain.ValuationResult, error) {
	return s.Query.GetValuationHistory(ctx, symbol, limit)
}
