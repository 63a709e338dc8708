// Package application 包含亚式期权定价服务的用例逻辑
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
	"github.com/wyfcoding/mcpricing/pkg/logger"
	"github.com/wyfcoding/mcpricing/pkg/metrics"
)

// Defaults 请求未携带时使用的模拟参数默认值与上限
type Defaults struct {
	Steps    int
	Paths    int
	MaxPaths int
}

// PricingService 亚式期权定价应用服务。
// 负责参数补全、调用定价引擎、落库审计记录并发布完成事件。
type PricingService struct {
	engine    *domain.Engine
	repo      domain.PricingRunRepository
	publisher domain.EventPublisher // 可为 nil，表示不发布事件
	metrics   *metrics.Metrics      // 可为 nil
	defaults  Defaults
}

// NewPricingService 创建定价应用服务实例
func NewPricingService(engine *domain.Engine, repo domain.PricingRunRepository, publisher domain.EventPublisher, m *metrics.Metrics, defaults Defaults) *PricingService {
	return &PricingService{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		defaults:  defaults,
	}
}

// PriceAsianCallCommand 定价命令
type PriceAsianCallCommand struct {
	S0                float64
	K                 float64
	T                 float64
	R                 float64
	Sigma             float64
	Dividend          float64
	Steps             int
	Paths             int
	Antithetic        bool
	UseControlVariate bool
	// Seed 为空时由服务生成并记录，保证每次运行均可重放
	Seed *int64
}

// PricingRunDTO 定价结果传输对象
type PricingRunDTO struct {
	RunID string `json:"run_id"`

	Price      decimal.Decimal `json:"price"`
	PriceLower decimal.Decimal `json:"price_lower"`
	PriceUpper decimal.Decimal `json:"price_upper"`
	Delta      decimal.Decimal `json:"delta"`
	DeltaLower decimal.Decimal `json:"delta_lower"`
	DeltaUpper decimal.Decimal `json:"delta_upper"`

	AnalyticPrice decimal.Decimal `json:"analytic_geometric_price"`
	AnalyticDelta decimal.Decimal `json:"analytic_geometric_delta"`

	PriceControlDegenerate bool `json:"price_control_degenerate"`
	DeltaControlDegenerate bool `json:"delta_control_degenerate"`

	Steps             int       `json:"steps"`
	Paths             int       `json:"paths"`
	Antithetic        bool      `json:"antithetic"`
	UseControlVariate bool      `json:"control_variate"`
	Seed              int64     `json:"seed"`
	ElapsedMs         int64     `json:"elapsed_ms"`
	CreatedAt         time.Time `json:"created_at"`
}

// PriceAsianCall 执行一次完整的价格+Delta 估计并记录审计信息
func (s *PricingService) PriceAsianCall(ctx context.Context, cmd PriceAsianCallCommand) (*PricingRunDTO, error) {
	cfg := domain.SimulationConfig{
		S0:                cmd.S0,
		K:                 cmd.K,
		T:                 cmd.T,
		R:                 cmd.R,
		Sigma:             cmd.Sigma,
		Dividend:          cmd.Dividend,
		Steps:             cmd.Steps,
		Paths:             cmd.Paths,
		Antithetic:        cmd.Antithetic,
		UseControlVariate: cmd.UseControlVariate,
	}
	if cfg.Steps == 0 {
		cfg.Steps = s.defaults.Steps
	}
	if cfg.Paths == 0 {
		cfg.Paths = s.defaults.Paths
	}
	if s.defaults.MaxPaths > 0 && cfg.Paths > s.defaults.MaxPaths {
		return nil, fmt.Errorf("%w: paths %d exceeds limit %d", domain.ErrValidation, cfg.Paths, s.defaults.MaxPaths)
	}

	seed := time.Now().UnixNano()
	if cmd.Seed != nil {
		seed = *cmd.Seed
	}

	start := time.Now()
	result, err := s.engine.PriceAsianCallSeeded(cfg, seed)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SimulationErrors.Inc()
		}
		logger.Error(ctx, "Pricing run failed", "error", err)
		return nil, err
	}
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.SimulationsTotal.Inc()
		s.metrics.SimulationDuration.Observe(elapsed.Seconds())
		rows := cfg.Paths
		if cfg.Antithetic {
			rows *= 2
		}
		s.metrics.PathsSimulated.Add(float64(rows))
		if result.PriceControlDegenerate || result.DeltaControlDegenerate {
			s.metrics.DegenerateControls.Inc()
		}
	}
	if result.PriceControlDegenerate || result.DeltaControlDegenerate {
		logger.Warn(ctx, "Control variate degenerate, correction disabled",
			"price_degenerate", result.PriceControlDegenerate,
			"delta_degenerate", result.DeltaControlDegenerate,
		)
	}

	run := &domain.PricingRun{
		ID:        uuid.New().String(),
		Config:    cfg,
		Seed:      seed,
		Workers:   s.engine.Workers,
		Result:    *result,
		ElapsedMs: elapsed.Milliseconds(),
		CreatedAt: time.Now(),
	}

	if err := s.repo.Save(ctx, run); err != nil {
		logger.Error(ctx, "Failed to save pricing run", "run_id", run.ID, "error", err)
		return nil, fmt.Errorf("failed to save pricing run: %w", err)
	}

	logger.Info(ctx, "Pricing run completed",
		"run_id", run.ID,
		"price", result.Price,
		"delta", result.Delta,
		"paths", cfg.Paths,
		"seed", seed,
		"elapsed_ms", run.ElapsedMs,
	)

	if s.publisher != nil {
		event := domain.NewPricingCompletedEvent(run)
		if err := s.publisher.Publish(ctx, domain.TopicPricingCompleted, run.ID, event); err != nil {
			// 事件发布失败不影响定价结果返回
			logger.Warn(ctx, "Failed to publish pricing event", "run_id", run.ID, "error", err)
		}
	}

	return toDTO(run), nil
}

// GetRun 根据 ID 查询定价记录，不存在时返回 (nil, nil)
func (s *PricingService) GetRun(ctx context.Context, id string) (*PricingRunDTO, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing run: %w", err)
	}
	if run == nil {
		return nil, nil
	}
	return toDTO(run), nil
}

// ListRuns 查询最近的定价记录
func (s *PricingService) ListRuns(ctx context.Context, limit int) ([]*PricingRunDTO, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	runs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing runs: %w", err)
	}
	dtos := make([]*PricingRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toDTO(run))
	}
	return dtos, nil
}

func toDTO(run *domain.PricingRun) *PricingRunDTO {
	return &PricingRunDTO{
		RunID:                  run.ID,
		Price:                  decimal.NewFromFloat(run.Result.Price),
		PriceLower:             decimal.NewFromFloat(run.Result.PriceLower),
		PriceUpper:             decimal.NewFromFloat(run.Result.PriceUpper),
		Delta:                  decimal.NewFromFloat(run.Result.Delta),
		DeltaLower:             decimal.NewFromFloat(run.Result.DeltaLower),
		DeltaUpper:             decimal.NewFromFloat(run.Result.DeltaUpper),
		AnalyticPrice:          decimal.NewFromFloat(run.Result.AnalyticPrice),
		AnalyticDelta:          decimal.NewFromFloat(run.Result.AnalyticDelta),
		PriceControlDegenerate: run.Result.PriceControlDegenerate,
		DeltaControlDegenerate: run.Result.DeltaControlDegenerate,
		Steps:                  run.Config.Steps,
		Paths:                  run.Config.Paths,
		Antithetic:             run.Config.Antithetic,
		UseControlVariate:      run.Config.UseControlVariate,
		Seed:                   run.Seed,
		ElapsedMs:              run.ElapsedMs,
		CreatedAt:              run.CreatedAt,
	}
}
