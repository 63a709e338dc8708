package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// z975 标准正态分布 97.5% 分位数，对应名义 95% 双侧置信区间
const z975 = 1.959963984540054

// EstimationResult 点估计与 95% 置信区间
type EstimationResult struct {
	Estimate float64
	Lower    float64
	Upper    float64
}

// Width 置信区间宽度
func (e EstimationResult) Width() float64 {
	return e.Upper - e.Lower
}

// ConfidenceInterval 样本均值 m、样本标准差 s（n-1 分母，价格与 Delta
// 保持一致，区间宽度才可比），返回 (m, m-z*s/sqrt(n), m+z*s/sqrt(n))。
// n<2 时样本标准差无定义，拒绝。
func ConfidenceInterval(values []float64) (EstimationResult, error) {
	if len(values) < 2 {
		return EstimationResult{}, fmt.Errorf("%w: %w (got %d observations)", ErrValidation, ErrInvalidPaths, len(values))
	}
	m, err := stats.Mean(values)
	if err != nil {
		return EstimationResult{}, fmt.Errorf("confidence interval: mean: %w", err)
	}
	s, err := stats.StandardDeviationSample(values)
	if err != nil {
		return EstimationResult{}, fmt.Errorf("confidence interval: stddev: %w", err)
	}
	half := z975 * s / math.Sqrt(float64(len(values)))
	return EstimationResult{Estimate: m, Lower: m - half, Upper: m + half}, nil
}
