package domain

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// 控制变量样本方差低于该阈值时视为退化，回退为不修正
const controlVarianceFloor = 1e-12

// ControlEstimate 一次控制变量修正的结果
type ControlEstimate struct {
	Coefficient float64   // 估计的方差最小化系数 c_hat
	Degenerate  bool      // 控制变量方差退化，系数被强制为 0
	Corrected   []float64 // 逐行修正值 target - c_hat*(control - analyticMean)
}

// ApplyControlVariate 用同一批样本估计 c_hat = Cov(target, control)/Var(control)
// 并形成逐行修正值。协方差与方差均用 n-1 分母。
//
// 已知偏差：系数与修正共用同一批样本会引入随样本量渐近消失的小偏差，
// 按设计接受，不做样本拆分修正。
//
// 退化情形：Var(control) 数值上为零时系数无定义，回退为 c_hat=0
// （即不修正）并置 Degenerate 标记，不向上传播除零或 NaN。
func ApplyControlVariate(target, control []float64, analyticMean float64) (*ControlEstimate, error) {
	if len(target) != len(control) {
		return nil, fmt.Errorf("control variate: target/control length mismatch (%d vs %d)", len(target), len(control))
	}
	if len(target) < 2 {
		return nil, fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidPaths, len(target))
	}

	variance, err := stats.SampleVariance(control)
	if err != nil {
		return nil, fmt.Errorf("control variate: variance: %w", err)
	}

	est := &ControlEstimate{}
	if variance <= controlVarianceFloor {
		est.Degenerate = true
	} else {
		cov, err := stats.Covariance(target, control)
		if err != nil {
			return nil, fmt.Errorf("control variate: covariance: %w", err)
		}
		est.Coefficient = cov / variance
	}

	est.Corrected = make([]float64, len(target))
	for i := range target {
		est.Corrected[i] = target[i] - est.Coefficient*(control[i]-analyticMean)
	}
	return est, nil
}
