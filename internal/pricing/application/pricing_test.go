package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/xerrors"
)

// memoryRepository 进程内估值仓储, 事务为直通回调。
type memoryRepository struct {
	mu      sync.Mutex
	results []*domain.ValuationResult
	saveErr error
}

func (r *memoryRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (r *memoryRepository) Save(ctx context.Context, result *domain.ValuationResult) error {
	if r.saveErr != nil {
		return r.saveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = uint(len(r.results) + 1)
	r.results = append(r.results, result)

	return nil
}

func (r *memoryRepository) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].Symbol == symbol {
			return r.results[i], nil
		}
	}

	return nil, nil
}

func (r *memoryRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.ValuationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]*domain.ValuationResult, 0, limit)
	for i := len(r.results) - 1; i >= 0 && len(history) < limit; i-- {
		if r.results[i].Symbol == symbol {
			history = append(history, r.results[i])
		}
	}

	return history, nil
}

type publishedEvent struct {
	topic string
	key   string
	event any
	inTx  bool
}

// recordingPublisher 记录全部发布调用的假实现。
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	p.record(publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error {
	p.record(publishedEvent{topic: topic, key: key, event: event, inTx: true})
	return nil
}

func (p *recordingPublisher) record(e publishedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) byTopic(topic string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	matched := make([]publishedEvent, 0, len(p.events))
	for _, e := range p.events {
		if e.topic == topic {
			matched = append(matched, e)
		}
	}

	return matched
}

func newPricingFixture() (*PricingService, *memoryRepository, *recordingPublisher) {
	repo := &memoryRepository{}
	publisher := &recordingPublisher{}

	return NewPricingService(repo, publisher), repo, publisher
}

func europeanCallCommand(symbol string) ValueOptionCommand {
	return ValueOptionCommand{
		Symbol:     symbol,
		OptionType: string(domain.OptionTypeCall),
		Spot:       52,
		Strike:     50,
		Maturity:   0.25,
		Volatility: 0.3,
		Rate:       0.12,
	}
}

func mustAnalytic(t *testing.T, optionType domain.OptionType, spot, strike, maturity, volatility, rate, dividend float64) *domain.AnalyticPricer {
	t.Helper()

	contract, err := domain.NewOptionContract("", optionType, domain.OptionStyleEuropean, spot, strike, maturity, volatility, rate, dividend)
	if err != nil {
		t.Fatalf("NewOptionContract: %v", err)
	}

	pricer, err := domain.NewAnalyticPricer(contract)
	if err != nil {
		t.Fatalf("NewAnalyticPricer: %v", err)
	}

	return pricer
}

func TestPricingCommandService_ValueOptionAnalyticDefault(t *testing.T) {
	svc, repo, publisher := newPricingFixture()

	result, err := svc.ValueOption(context.Background(), europeanCallCommand("AAPL-C-50"))
	if err != nil {
		t.Fatalf("ValueOption: %v", err)
	}

	if result.Method != domain.ValuationMethodAnalytic {
		t.Fatalf("method = %s, want %s", result.Method, domain.ValuationMethodAnalytic)
	}
	if result.TimeSteps != 0 {
		t.Fatalf("time steps = %d, want 0", result.TimeSteps)
	}
	if !result.HasGreeks {
		t.Fatal("analytic valuation should carry greeks")
	}

	pricer := mustAnalytic(t, domain.OptionTypeCall, 52, 50, 0.25, 0.3, 0.12, 0)
	if got := result.Price.InexactFloat64(); math.Abs(got-pricer.Price()) > 1e-12 {
		t.Fatalf("price = %v, want %v", got, pricer.Price())
	}
	if got := result.Delta.InexactFloat64(); math.Abs(got-pricer.Delta()) > 1e-12 {
		t.Fatalf("delta = %v, want %v", got, pricer.Delta())
	}

	if len(repo.results) != 1 {
		t.Fatalf("saved results = %d, want 1", len(repo.results))
	}

	valued := publisher.byTopic(domain.OptionValuedEventType)
	if len(valued) != 1 || !valued[0].inTx {
		t.Fatalf("want one transactional %s event, got %+v", domain.OptionValuedEventType, valued)
	}
	if valued[0].key != "AAPL-C-50" {
		t.Fatalf("event key = %q, want contract symbol", valued[0].key)
	}
	event, ok := valued[0].event.(domain.OptionValuedEvent)
	if !ok {
		t.Fatalf("event payload type = %T", valued[0].event)
	}
	if math.Abs(event.Price-pricer.Price()) > 1e-12 {
		t.Fatalf("event price = %v, want %v", event.Price, pricer.Price())
	}

	greeks := publisher.byTopic(domain.GreeksCalculatedEventType)
	if len(greeks) != 1 || !greeks[0].inTx {
		t.Fatalf("want one transactional %s event, got %+v", domain.GreeksCalculatedEventType, greeks)
	}
}

func TestPricingCommandService_ValueOptionAmericanLattice(t *testing.T) {
	svc, repo, publisher := newPricingFixture()

	cmd := ValueOptionCommand{
		Symbol:      "HSI-P-1480",
		OptionType:  string(domain.OptionTypePut),
		OptionStyle: string(domain.OptionStyleAmerican),
		Spot:        1500,
		Strike:      1480,
		Maturity:    1,
		Volatility:  0.18,
		Rate:        0.04,
		Dividend:    0.025,
		TimeSteps:   64,
	}

	result, err := svc.ValueOption(context.Background(), cmd)
	if err != nil {
		t.Fatalf("ValueOption: %v", err)
	}

	if result.Method != domain.ValuationMethodLattice {
		t.Fatalf("method = %s, want %s", result.Method, domain.ValuationMethodLattice)
	}
	if result.TimeSteps != 64 {
		t.Fatalf("time steps = %d, want 64", result.TimeSteps)
	}
	if result.HasGreeks {
		t.Fatal("lattice valuation without closed form should not carry greeks")
	}
	if !result.Delta.IsZero() {
		t.Fatalf("delta = %s, want zero", result.Delta)
	}

	contract, err := domain.NewOptionContract("HSI-P-1480", domain.OptionTypePut, domain.OptionStyleAmerican, 1500, 1480, 1, 0.18, 0.04, 0.025)
	if err != nil {
		t.Fatalf("NewOptionContract: %v", err)
	}
	lattice, err := domain.NewLatticePricer(contract, 64)
	if err != nil {
		t.Fatalf("NewLatticePricer: %v", err)
	}
	if got := result.Price.InexactFloat64(); math.Abs(got-lattice.Price()) > 1e-12 {
		t.Fatalf("price = %v, want %v", got, lattice.Price())
	}

	if len(repo.results) != 1 {
		t.Fatalf("saved results = %d, want 1", len(repo.results))
	}
	if got := len(publisher.byTopic(domain.OptionValuedEventType)); got != 1 {
		t.Fatalf("valued events = %d, want 1", got)
	}
	if got := len(publisher.byTopic(domain.GreeksCalculatedEventType)); got != 0 {
		t.Fatalf("greeks events = %d, want 0", got)
	}
}

func TestPricingCommandService_ValueOptionDefaultTimeSteps(t *testing.T) {
	svc, _, _ := newPricingFixture()

	cmd := europeanCallCommand("AAPL-C-50")
	cmd.OptionStyle = string(domain.OptionStyleAmerican)

	result, err := svc.ValueOption(context.Background(), cmd)
	if err != nil {
		t.Fatalf("ValueOption: %v", err)
	}

	if result.Method != domain.ValuationMethodLattice {
		t.Fatalf("method = %s, want %s", result.Method, domain.ValuationMethodLattice)
	}
	if result.TimeSteps != defaultLatticeSteps {
		t.Fatalf("time steps = %d, want %d", result.TimeSteps, defaultLatticeSteps)
	}
}

func TestPricingCommandService_ValueOptionValidation(t *testing.T) {
	svc, repo, publisher := newPricingFixture()

	missingSymbol := europeanCallCommand("")

	badType := europeanCallCommand("AAPL-C-50")
	badType.OptionType = "STRADDLE"

	analyticAmerican := europeanCallCommand("AAPL-C-50")
	analyticAmerican.OptionStyle = string(domain.OptionStyleAmerican)
	analyticAmerican.Method = string(domain.ValuationMethodAnalytic)

	badMethod := europeanCallCommand("AAPL-C-50")
	badMethod.Method = "MONTE_CARLO"

	badSpot := europeanCallCommand("AAPL-C-50")
	badSpot.Spot = -1

	tests := []struct {
		name       string
		cmd        ValueOptionCommand
		sentinel   error
		invalidArg bool
	}{
		{name: "missing symbol", cmd: missingSymbol, invalidArg: true},
		{name: "unknown option type", cmd: badType, sentinel: domain.ErrInvalidOptionType},
		{name: "analytic on american", cmd: analyticAmerican, sentinel: domain.ErrNoClosedForm},
		{name: "unsupported method", cmd: badMethod, invalidArg: true},
		{name: "non-positive spot", cmd: badSpot, sentinel: domain.ErrInvalidContractInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValueOption(context.Background(), tt.cmd)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Fatalf("error = %v, want %v", err, tt.sentinel)
			}
			if tt.invalidArg {
				appErr, ok := xerrors.FromError(err)
				if !ok || appErr.Type != xerrors.ErrInvalidArg {
					t.Fatalf("error = %v, want invalid argument", err)
				}
			}
		})
	}

	if len(repo.results) != 0 {
		t.Fatalf("saved results = %d, want 0", len(repo.results))
	}
	if len(publisher.events) != 0 {
		t.Fatalf("published events = %d, want 0", len(publisher.events))
	}
}

func TestPricingCommandService_NilPublisher(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewPricingService(repo, nil)

	if _, err := svc.ValueOption(context.Background(), europeanCallCommand("AAPL-C-50")); err != nil {
		t.Fatalf("ValueOption without publisher: %v", err)
	}
	if len(repo.results) != 1 {
		t.Fatalf("saved results = %d, want 1", len(repo.results))
	}
}

func TestPricingCommandService_SaveFailureSkipsEvents(t *testing.T) {
	repo := &memoryRepository{saveErr: errors.New("db down")}
	publisher := &recordingPublisher{}
	svc := NewPricingService(repo, publisher)

	if _, err := svc.ValueOption(context.Background(), europeanCallCommand("AAPL-C-50")); err == nil {
		t.Fatal("expected save error")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("published events = %d, want 0", len(publisher.events))
	}
}

func TestPricingCommandService_BatchValueOptions(t *testing.T) {
	svc, repo, publisher := newPricingFixture()

	bad := europeanCallCommand("AAPL-C-50")
	bad.Volatility = 0

	cmd := BatchValueOptionsCommand{
		BatchID: "batch-1",
		Contracts: []ValueOptionCommand{
			europeanCallCommand("AAPL-C-50"),
			bad,
			europeanCallCommand("AAPL-C-50"),
			europeanCallCommand("MSFT-C-300"),
		},
	}

	result, err := svc.BatchValueOptions(context.Background(), cmd)
	if err != nil {
		t.Fatalf("BatchValueOptions: %v", err)
	}

	if result.SuccessCount != 3 || result.FailureCount != 1 {
		t.Fatalf("success = %d failure = %d, want 3/1", result.SuccessCount, result.FailureCount)
	}
	if len(result.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(result.Results))
	}
	if result.AverageTime < 0 {
		t.Fatalf("average time = %v, want >= 0", result.AverageTime)
	}
	if len(repo.results) != 3 {
		t.Fatalf("saved results = %d, want 3", len(repo.results))
	}

	batch := publisher.byTopic(domain.BatchValuationCompletedEventType)
	if len(batch) != 1 {
		t.Fatalf("batch events = %d, want 1", len(batch))
	}
	if batch[0].inTx {
		t.Fatal("batch summary event should be published outside the transaction")
	}
	event, ok := batch[0].event.(domain.BatchValuationCompletedEvent)
	if !ok {
		t.Fatalf("event payload type = %T", batch[0].event)
	}
	if event.TotalContracts != 4 || event.SuccessCount != 3 || event.FailureCount != 1 {
		t.Fatalf("event counts = %d/%d/%d, want 4/3/1", event.TotalContracts, event.SuccessCount, event.FailureCount)
	}
	if len(event.Symbols) != 2 {
		t.Fatalf("deduplicated symbols = %v, want 2 entries", event.Symbols)
	}
}

func TestPricingCommandService_SolveImpliedVolatility(t *testing.T) {
	svc, _, publisher := newPricingFixture()

	marketPrice := mustAnalytic(t, domain.OptionTypeCall, 52, 50, 0.25, 0.25, 0.12, 0).Price()

	cmd := SolveImpliedVolatilityCommand{
		Symbol:      "AAPL-C-50",
		OptionType:  string(domain.OptionTypeCall),
		Spot:        52,
		Strike:      50,
		Maturity:    0.25,
		Rate:        0.12,
		MarketPrice: marketPrice,
	}

	sigma, err := svc.SolveImpliedVolatility(context.Background(), cmd)
	if err != nil {
		t.Fatalf("SolveImpliedVolatility: %v", err)
	}
	if math.Abs(sigma-0.25) > 1e-3 {
		t.Fatalf("sigma = %v, want 0.25", sigma)
	}

	events := publisher.byTopic(domain.ImpliedVolatilitySolvedEventType)
	if len(events) != 1 || events[0].inTx {
		t.Fatalf("want one plain %s event, got %+v", domain.ImpliedVolatilitySolvedEventType, events)
	}
	event, ok := events[0].event.(domain.ImpliedVolatilitySolvedEvent)
	if !ok {
		t.Fatalf("event payload type = %T", events[0].event)
	}
	if event.ImpliedVolatility != sigma {
		t.Fatalf("event sigma = %v, want %v", event.ImpliedVolatility, sigma)
	}

	cmd.MarketPrice = 0
	if _, err := svc.SolveImpliedVolatility(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidMarketPrice) {
		t.Fatalf("error = %v, want %v", err, domain.ErrInvalidMarketPrice)
	}
}

func TestPricingQueryService_GetGreeks(t *testing.T) {
	svc, _, _ := newPricingFixture()

	greeks, err := svc.GetGreeks(context.Background(), GreeksQuery{
		OptionType: string(domain.OptionTypePut),
		Spot:       42,
		Strike:     40,
		Maturity:   0.5,
		Volatility: 0.2,
		Rate:       0.1,
	})
	if err != nil {
		t.Fatalf("GetGreeks: %v", err)
	}

	pricer := mustAnalytic(t, domain.OptionTypePut, 42, 40, 0.5, 0.2, 0.1, 0)
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"price", greeks.Price, pricer.Price()},
		{"delta", greeks.Delta, pricer.Delta()},
		{"gamma", greeks.Gamma, pricer.Gamma()},
		{"vega", greeks.Vega, pricer.Vega()},
		{"theta", greeks.Theta, pricer.Theta()},
		{"rho", greeks.Rho, pricer.Rho()},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if _, err := svc.GetGreeks(context.Background(), GreeksQuery{OptionType: "STRADDLE", Spot: 42, Strike: 40, Maturity: 0.5, Volatility: 0.2}); !errors.Is(err, domain.ErrInvalidOptionType) {
		t.Fatalf("error = %v, want %v", err, domain.ErrInvalidOptionType)
	}
}

func TestPricingQueryService_ExplainValuation(t *testing.T) {
	svc, _, _ := newPricingFixture()

	base := ExplainQuery{
		Quantity:   "price",
		OptionType: string(domain.OptionTypeCall),
		Spot:       52,
		Strike:     50,
		Maturity:   0.25,
		Volatility: 0.3,
		Rate:       0.12,
	}

	trace, err := svc.ExplainValuation(context.Background(), base)
	if err != nil {
		t.Fatalf("ExplainValuation: %v", err)
	}

	pricer := mustAnalytic(t, domain.OptionTypeCall, 52, 50, 0.25, 0.3, 0.12, 0)
	if trace.Quantity != "price" {
		t.Fatalf("quantity = %q, want price", trace.Quantity)
	}
	if trace.Value != pricer.Price() {
		t.Fatalf("value = %v, want %v", trace.Value, pricer.Price())
	}
	if len(trace.Steps) != 5 {
		t.Fatalf("steps = %d, want 5", len(trace.Steps))
	}
	final := trace.Steps[len(trace.Steps)-1]
	if len(final) != 4 || final[0] != "C" {
		t.Fatalf("final step = %v, want 4 parts starting with C", final)
	}

	dQuery := base
	dQuery.Quantity = "d2"
	dTrace, err := svc.ExplainValuation(context.Background(), dQuery)
	if err != nil {
		t.Fatalf("ExplainValuation d2: %v", err)
	}
	if len(dTrace.Steps) != 2 {
		t.Fatalf("d2 steps = %d, want 2", len(dTrace.Steps))
	}

	digits := 2
	fixed := base
	fixed.Digits = &digits
	fixedTrace, err := svc.ExplainValuation(context.Background(), fixed)
	if err != nil {
		t.Fatalf("ExplainValuation with digits: %v", err)
	}
	finalFixed := fixedTrace.Steps[len(fixedTrace.Steps)-1]
	if want := decimal.NewFromFloat(pricer.Price()).StringFixed(2); finalFixed[len(finalFixed)-1] != want {
		t.Fatalf("answer = %q, want %q", finalFixed[len(finalFixed)-1], want)
	}

	unknown := base
	unknown.Quantity = "charm"
	if _, err := svc.ExplainValuation(context.Background(), unknown); err == nil {
		t.Fatal("expected error for unknown quantity")
	}

	sigFigs := base
	sigFigs.Mode = string(domain.PrecisionSignificantFigures)
	if _, err := svc.ExplainValuation(context.Background(), sigFigs); !errors.Is(err, domain.ErrInvalidPrecisionDigits) {
		t.Fatalf("error = %v, want %v", err, domain.ErrInvalidPrecisionDigits)
	}
}

func TestPricingQueryService_GetLatticeCalculation(t *testing.T) {
	svc, _, _ := newPricingFixture()

	query := LatticeQuery{
		OptionType:  string(domain.OptionTypePut),
		OptionStyle: string(domain.OptionStyleAmerican),
		Spot:        1500,
		Strike:      1480,
		Maturity:    1,
		Volatility:  0.18,
		Rate:        0.04,
		Dividend:    0.025,
		TimeSteps:   2,
	}

	grid, err := svc.GetLatticeCalculation(context.Background(), query)
	if err != nil {
		t.Fatalf("GetLatticeCalculation: %v", err)
	}

	if grid.TimeSteps != 2 {
		t.Fatalf("time steps = %d, want 2", grid.TimeSteps)
	}
	if len(grid.Nodes) != 6 {
		t.Fatalf("nodes = %d, want 6", len(grid.Nodes))
	}
	if math.Abs(grid.Price-78.41) > 0.01 {
		t.Fatalf("price = %v, want about 78.41", grid.Price)
	}
	if grid.Nodes[0].V != grid.Price {
		t.Fatalf("root value = %v, price = %v", grid.Nodes[0].V, grid.Price)
	}
	if grid.U <= 1 || grid.D >= 1 || grid.P <= 0 || grid.P >= 1 {
		t.Fatalf("factors u=%v d=%v p=%v out of range", grid.U, grid.D, grid.P)
	}

	exercised := false
	for _, n := range grid.Nodes {
		if n.Exercised {
			exercised = true
			break
		}
	}
	if !exercised {
		t.Fatal("deep american put grid should contain exercised nodes")
	}

	european := query
	european.OptionStyle = ""
	gridEU, err := svc.GetLatticeCalculation(context.Background(), european)
	if err != nil {
		t.Fatalf("GetLatticeCalculation european: %v", err)
	}
	for _, n := range gridEU.Nodes {
		if n.I < gridEU.TimeSteps && n.Exercised {
			t.Fatalf("european grid exercised before maturity at node (%d,%d)", n.I, n.J)
		}
	}
}

func TestPricingQueryService_LatestAndHistory(t *testing.T) {
	svc, _, _ := newPricingFixture()

	first := europeanCallCommand("AAPL-C-50")
	second := europeanCallCommand("AAPL-C-50")
	second.Spot = 55

	if _, err := svc.ValueOption(context.Background(), first); err != nil {
		t.Fatalf("ValueOption: %v", err)
	}
	if _, err := svc.ValueOption(context.Background(), second); err != nil {
		t.Fatalf("ValueOption: %v", err)
	}

	latest, err := svc.GetLatestValuation(context.Background(), "AAPL-C-50")
	if err != nil {
		t.Fatalf("GetLatestValuation: %v", err)
	}
	if got := latest.Spot.InexactFloat64(); got != 55 {
		t.Fatalf("latest spot = %v, want 55", got)
	}

	history, err := svc.GetValuationHistory(context.Background(), "AAPL-C-50", 10)
	if err != nil {
		t.Fatalf("GetValuationHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d, want 2", len(history))
	}

	_, err = svc.GetLatestValuation(context.Background(), "UNKNOWN")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if appErr, ok := xerrors.FromError(err); !ok || appErr.Type != xerrors.ErrNotFound {
		t.Fatalf("error = %v, want not found", err)
	}

	if _, err := svc.GetLatestValuation(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty symbol")
	}
	if _, err := svc.GetValuationHistory(context.Background(), "", 10); err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestPricingQueryService_ContextCancelled(t *testing.T) {
	svc, _, _ := newPricingFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	query := GreeksQuery{
		OptionType: string(domain.OptionTypeCall),
		Spot:       52,
		Strike:     50,
		Maturity:   0.25,
		Volatility: 0.3,
		Rate:       0.12,
	}
	if _, err := svc.GetGreeks(ctx, query); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want %v", err, context.Canceled)
	}
	if _, err := svc.GetLatestValuation(ctx, "AAPL-C-50"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want %v", err, context.Canceled)
	}
}
