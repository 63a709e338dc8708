package domain

import (
	"context"
	"time"
)

// PricingRun 一次定价调用的审计记录。参数、种子与结果全部落库，
// 同一 (种子, workers) 重放即可逐位复现结果。
type PricingRun struct {
	ID        string
	Config    SimulationConfig
	Seed      int64
	Workers   int
	Result    MonteCarloResult
	ElapsedMs int64
	CreatedAt time.Time
}

// PricingRunRepository 定价记录仓储接口
type PricingRunRepository interface {
	Save(ctx context.Context, run *PricingRun) error
	GetByID(ctx context.Context, id string) (*PricingRun, error)
	List(ctx context.Context, limit int) ([]*PricingRun, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
