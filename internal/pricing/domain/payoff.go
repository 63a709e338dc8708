package domain

import (
	"math"
)

// PayoffSample 路径批次的逐行贴现支付与路径微分 Delta 贡献。
// 四个向量与 PathBatch 的行一一对应。
type PayoffSample struct {
	Arithmetic      []float64 // 贴现算术平均支付 exp(-rT)*max(A-K, 0)
	Geometric       []float64 // 贴现几何平均支付（控制变量）
	ArithmeticDelta []float64 // 算术支付的路径微分 Delta 贡献
	GeometricDelta  []float64 // 几何支付的路径微分 Delta 贡献
}

// EvaluatePayoffs 将路径批次转换为逐行贴现支付与 Delta 贡献。
// 平均价只取内部观测点（不含 t=0）。对数正态路径下终端平均价对 S0
// 是线性的，链式法则给出路径微分 Delta = 1{payoff>0} * 平均价/S0（贴现后）。
//
// 路径微分估计量仅因支付对 S0 几乎处处连续而成立（示性函数的间断点
// 是零测事件），不能推广到二阶导数（如 Gamma）或间断支付。
func EvaluatePayoffs(b *PathBatch, s0, k, r, T float64) *PayoffSample {
	disc := math.Exp(-r * T)
	n := float64(b.Steps)
	s := &PayoffSample{
		Arithmetic:      make([]float64, b.Rows),
		Geometric:       make([]float64, b.Rows),
		ArithmeticDelta: make([]float64, b.Rows),
		GeometricDelta:  make([]float64, b.Rows),
	}

	for i := 0; i < b.Rows; i++ {
		var sumPrice, sumLog float64
		for j := 1; j <= b.Steps; j++ {
			x := b.At(i, j)
			sumPrice += math.Exp(x)
			sumLog += x
		}
		arith := sumPrice / n
		geo := math.Exp(sumLog / n)

		if arith > k {
			s.Arithmetic[i] = disc * (arith - k)
			s.ArithmeticDelta[i] = disc * arith / s0
		}
		if geo > k {
			s.Geometric[i] = disc * (geo - k)
			s.GeometricDelta[i] = disc * geo / s0
		}
	}
	return s
}
