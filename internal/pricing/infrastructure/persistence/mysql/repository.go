// Package mysql 定价记录的 MySQL 持久化实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
	"gorm.io/gorm"
)

// PricingRunPO 定价记录数据库模型，对应 pricing_runs 表
type PricingRunPO struct {
	ID string `gorm:"column:id;type:varchar(36);primaryKey"`

	S0                float64 `gorm:"column:s0;not null"`
	K                 float64 `gorm:"column:k;not null"`
	T                 float64 `gorm:"column:t;not null"`
	R                 float64 `gorm:"column:r;not null"`
	Sigma             float64 `gorm:"column:sigma;not null"`
	Dividend          float64 `gorm:"column:dividend;not null"`
	Steps             int     `gorm:"column:steps;not null"`
	Paths             int     `gorm:"column:paths;not null"`
	Antithetic        bool    `gorm:"column:antithetic;not null"`
	UseControlVariate bool    `gorm:"column:use_control_variate;not null"`

	Seed    int64 `gorm:"column:seed;not null"`
	Workers int   `gorm:"column:workers;not null"`

	Price      float64 `gorm:"column:price"`
	PriceLower float64 `gorm:"column:price_lower"`
	PriceUpper float64 `gorm:"column:price_upper"`
	Delta      float64 `gorm:"column:delta"`
	DeltaLower float64 `gorm:"column:delta_lower"`
	DeltaUpper float64 `gorm:"column:delta_upper"`

	AnalyticPrice float64 `gorm:"column:analytic_price"`
	AnalyticDelta float64 `gorm:"column:analytic_delta"`

	PriceCoefficient       float64 `gorm:"column:price_coefficient"`
	DeltaCoefficient       float64 `gorm:"column:delta_coefficient"`
	PriceControlDegenerate bool    `gorm:"column:price_control_degenerate"`
	DeltaControlDegenerate bool    `gorm:"column:delta_control_degenerate"`

	ElapsedMs int64     `gorm:"column:elapsed_ms"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

// TableName 指定表名
func (PricingRunPO) TableName() string {
	return "pricing_runs"
}

// ToDomain 将数据库模型转换为领域实体
func (po *PricingRunPO) ToDomain() *domain.PricingRun {
	return &domain.PricingRun{
		ID: po.ID,
		Config: domain.SimulationConfig{
			S0:                po.S0,
			K:                 po.K,
			T:                 po.T,
			R:                 po.R,
			Sigma:             po.Sigma,
			Dividend:          po.Dividend,
			Steps:             po.Steps,
			Paths:             po.Paths,
			Antithetic:        po.Antithetic,
			UseControlVariate: po.UseControlVariate,
		},
		Seed:    po.Seed,
		Workers: po.Workers,
		Result: domain.MonteCarloResult{
			Price:                  po.Price,
			PriceLower:             po.PriceLower,
			PriceUpper:             po.PriceUpper,
			Delta:                  po.Delta,
			DeltaLower:             po.DeltaLower,
			DeltaUpper:             po.DeltaUpper,
			AnalyticPrice:          po.AnalyticPrice,
			AnalyticDelta:          po.AnalyticDelta,
			PriceCoefficient:       po.PriceCoefficient,
			DeltaCoefficient:       po.DeltaCoefficient,
			PriceControlDegenerate: po.PriceControlDegenerate,
			DeltaControlDegenerate: po.DeltaControlDegenerate,
		},
		ElapsedMs: po.ElapsedMs,
		CreatedAt: po.CreatedAt,
	}
}

func fromDomain(run *domain.PricingRun) *PricingRunPO {
	return &PricingRunPO{
		ID:                     run.ID,
		S0:                     run.Config.S0,
		K:                      run.Config.K,
		T:                      run.Config.T,
		R:                      run.Config.R,
		Sigma:                  run.Config.Sigma,
		Dividend:               run.Config.Dividend,
		Steps:                  run.Config.Steps,
		Paths:                  run.Config.Paths,
		Antithetic:             run.Config.Antithetic,
		UseControlVariate:      run.Config.UseControlVariate,
		Seed:                   run.Seed,
		Workers:                run.Workers,
		Price:                  run.Result.Price,
		PriceLower:             run.Result.PriceLower,
		PriceUpper:             run.Result.PriceUpper,
		Delta:                  run.Result.Delta,
		DeltaLower:             run.Result.DeltaLower,
		DeltaUpper:             run.Result.DeltaUpper,
		AnalyticPrice:          run.Result.AnalyticPrice,
		AnalyticDelta:          run.Result.AnalyticDelta,
		PriceCoefficient:       run.Result.PriceCoefficient,
		DeltaCoefficient:       run.Result.DeltaCoefficient,
		PriceControlDegenerate: run.Result.PriceControlDegenerate,
		DeltaControlDegenerate: run.Result.DeltaControlDegenerate,
		ElapsedMs:              run.ElapsedMs,
		CreatedAt:              run.CreatedAt,
	}
}

// pricingRunRepository 定价记录仓储实现
type pricingRunRepository struct {
	db *gorm.DB
}

// NewPricingRunRepository 创建定价记录仓储实例
func NewPricingRunRepository(db *gorm.DB) domain.PricingRunRepository {
	return &pricingRunRepository{db: db}
}

// Save 保存定价记录
func (r *pricingRunRepository) Save(ctx context.Context, run *domain.PricingRun) error {
	if err := r.db.WithContext(ctx).Create(fromDomain(run)).Error; err != nil {
		return fmt.Errorf("failed to save pricing run: %w", err)
	}
	return nil
}

// GetByID 根据 ID 查询定价记录，不存在时返回 (nil, nil)
func (r *pricingRunRepository) GetByID(ctx context.Context, id string) (*domain.PricingRun, error) {
	var po PricingRunPO
	if err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing run: %w", err)
	}
	return po.ToDomain(), nil
}

// List 按创建时间倒序查询最近的定价记录
func (r *pricingRunRepository) List(ctx context.Context, limit int) ([]*domain.PricingRun, error) {
	var pos []PricingRunPO
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&pos).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing runs: %w", err)
	}
	runs := make([]*domain.PricingRun, 0, len(pos))
	for i := range pos {
		runs = append(runs, pos[i].ToDomain())
	}
	return runs, nil
}
