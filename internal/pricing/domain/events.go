package domain

import (
	"time"
)

// TopicPricingCompleted 定价完成事件主题
const TopicPricingCompleted = "pricing.asian.completed"

// PricingCompletedEvent 定价完成事件，供下游风控消费
type PricingCompletedEvent struct {
	RunID      string    `json:"run_id"`
	Price      float64   `json:"price"`
	PriceLower float64   `json:"price_lower"`
	PriceUpper float64   `json:"price_upper"`
	Delta      float64   `json:"delta"`
	DeltaLower float64   `json:"delta_lower"`
	DeltaUpper float64   `json:"delta_upper"`
	Seed       int64     `json:"seed"`
	Paths      int       `json:"paths"`
	Steps      int       `json:"steps"`
	Antithetic bool      `json:"antithetic"`
	ControlVar bool      `json:"control_variate"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPricingCompletedEvent 由定价记录构造完成事件
func NewPricingCompletedEvent(run *PricingRun) *PricingCompletedEvent {
	return &PricingCompletedEvent{
		RunID:      run.ID,
		Price:      run.Result.Price,
		PriceLower: run.Result.PriceLower,
		PriceUpper: run.Result.PriceUpper,
		Delta:      run.Result.Delta,
		DeltaLower: run.Result.DeltaLower,
		DeltaUpper: run.Result.DeltaUpper,
		Seed:       run.Seed,
		Paths:      run.Config.Paths,
		Steps:      run.Config.Steps,
		Antithetic: run.Config.Antithetic,
		ControlVar: run.Config.UseControlVariate,
		CreatedAt:  run.CreatedAt,
	}
}
