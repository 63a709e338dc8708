package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
)

// fakeRunRepository 内存仓储，用于单元测试
type fakeRunRepository struct {
	mu      sync.Mutex
	runs    []*domain.PricingRun
	saveErr error
}

func (f *fakeRunRepository) Save(ctx context.Context, run *domain.PricingRun) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunRepository) GetByID(ctx context.Context, id string) (*domain.PricingRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, nil
}

func (f *fakeRunRepository) List(ctx context.Context, limit int) ([]*domain.PricingRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.PricingRun, 0, limit)
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.runs[i])
	}
	return out, nil
}

// fakePublisher 记录发布的事件
type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, key)
	return nil
}

func newTestService(repo domain.PricingRunRepository, pub domain.EventPublisher) *PricingService {
	return NewPricingService(domain.NewEngine(1), repo, pub, nil, Defaults{
		Steps:    10,
		Paths:    2000,
		MaxPaths: 100000,
	})
}

func baseCommand() PriceAsianCallCommand {
	seed := int64(42)
	return PriceAsianCallCommand{
		S0:                11,
		K:                 10,
		T:                 0.25,
		R:                 0.02,
		Sigma:             0.3,
		Dividend:          0.01,
		Steps:             10,
		Paths:             2000,
		Antithetic:        true,
		UseControlVariate: true,
		Seed:              &seed,
	}
}

func TestPriceAsianCallSavesRunAndPublishes(t *testing.T) {
	repo := &fakeRunRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	dto, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("PriceAsianCall() error = %v", err)
	}
	if dto.RunID == "" {
		t.Error("expected non-empty run id")
	}
	if dto.Seed != 42 {
		t.Errorf("Seed = %d, want 42", dto.Seed)
	}
	price, _ := dto.Price.Float64()
	if price <= 0 {
		t.Errorf("Price = %v, want > 0", price)
	}

	if len(repo.runs) != 1 {
		t.Fatalf("saved runs = %d, want 1", len(repo.runs))
	}
	if repo.runs[0].ID != dto.RunID {
		t.Errorf("saved run id = %s, want %s", repo.runs[0].ID, dto.RunID)
	}

	if len(pub.topics) != 1 || pub.topics[0] != domain.TopicPricingCompleted {
		t.Errorf("published topics = %v, want [%s]", pub.topics, domain.TopicPricingCompleted)
	}
	if pub.keys[0] != dto.RunID {
		t.Errorf("event key = %s, want run id %s", pub.keys[0], dto.RunID)
	}
}

func TestPriceAsianCallSameSeedSameResult(t *testing.T) {
	svc := newTestService(&fakeRunRepository{}, nil)

	a, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !a.Price.Equal(b.Price) {
		t.Errorf("Price %v != %v for identical seed", a.Price, b.Price)
	}
	if !a.Delta.Equal(b.Delta) {
		t.Errorf("Delta %v != %v for identical seed", a.Delta, b.Delta)
	}
}

func TestPriceAsianCallAppliesDefaults(t *testing.T) {
	repo := &fakeRunRepository{}
	svc := newTestService(repo, nil)

	cmd := baseCommand()
	cmd.Steps = 0
	cmd.Paths = 0

	dto, err := svc.PriceAsianCall(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceAsianCall() error = %v", err)
	}
	if dto.Steps != 10 {
		t.Errorf("Steps = %d, want default 10", dto.Steps)
	}
	if dto.Paths != 2000 {
		t.Errorf("Paths = %d, want default 2000", dto.Paths)
	}
}

func TestPriceAsianCallGeneratesSeedWhenAbsent(t *testing.T) {
	svc := newTestService(&fakeRunRepository{}, nil)

	cmd := baseCommand()
	cmd.Seed = nil

	dto, err := svc.PriceAsianCall(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceAsianCall() error = %v", err)
	}
	if dto.Seed == 0 {
		t.Error("expected generated seed to be recorded")
	}
}

func TestPriceAsianCallRejectsExcessivePaths(t *testing.T) {
	svc := newTestService(&fakeRunRepository{}, nil)

	cmd := baseCommand()
	cmd.Paths = 200000

	_, err := svc.PriceAsianCall(context.Background(), cmd)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestPriceAsianCallRejectsInvalidConfig(t *testing.T) {
	svc := newTestService(&fakeRunRepository{}, nil)

	cmd := baseCommand()
	cmd.Sigma = -0.1

	_, err := svc.PriceAsianCall(context.Background(), cmd)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestPriceAsianCallSaveFailure(t *testing.T) {
	repo := &fakeRunRepository{saveErr: fmt.Errorf("db down")}
	svc := newTestService(repo, nil)

	_, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err == nil {
		t.Fatal("expected error when repository save fails")
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Error("save failure must not be reported as validation error")
	}
}

func TestPriceAsianCallPublishFailureIsNonFatal(t *testing.T) {
	repo := &fakeRunRepository{}
	pub := &fakePublisher{err: fmt.Errorf("broker unreachable")}
	svc := newTestService(repo, pub)

	dto, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("publish failure should not fail the run: %v", err)
	}
	if dto == nil || dto.RunID == "" {
		t.Error("expected a valid result despite publish failure")
	}
}

func TestGetRunNotFound(t *testing.T) {
	svc := newTestService(&fakeRunRepository{}, nil)

	dto, err := svc.GetRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if dto != nil {
		t.Errorf("GetRun() = %+v, want nil for missing run", dto)
	}
}

func TestGetRunRoundTrip(t *testing.T) {
	repo := &fakeRunRepository{}
	svc := newTestService(repo, nil)

	created, err := svc.PriceAsianCall(context.Background(), baseCommand())
	if err != nil {
		t.Fatalf("PriceAsianCall() error = %v", err)
	}

	got, err := svc.GetRun(context.Background(), created.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetRun() = nil, want stored run")
	}
	if !got.Price.Equal(created.Price) {
		t.Errorf("Price = %v, want %v", got.Price, created.Price)
	}
}

func TestListRunsClampsLimit(t *testing.T) {
	repo := &fakeRunRepository{}
	svc := newTestService(repo, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.PriceAsianCall(context.Background(), baseCommand()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	dtos, err := svc.ListRuns(context.Background(), -5)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(dtos) != 3 {
		t.Errorf("ListRuns() returned %d runs, want 3", len(dtos))
	}
}
