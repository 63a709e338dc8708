package domain

import (
	"math"
)

// ControlVariateModel 几何平均亚式看涨期权的闭式价格与 Delta。
// 每次定价调用计算一次，作为控制变量的解析锚点，生命周期内只读。
type ControlVariateModel struct {
	Price float64
	Delta float64
}

// GeometricAsianCall 离散观测几何平均亚式看涨期权的闭式定价。
// 波动率与漂移按观测次数调整后代入 Black-Scholes 形式的公式：
//
//	sigma_hat = sigma * sqrt((N+1)(2N+1)/(6N^2))
//	mu_hat    = sigma_hat^2/2 + (r - delta - sigma^2/2)(N+1)/(2N)
//
// 纯函数，无状态，仅在合约起始时刻 t=0 有效。
func GeometricAsianCall(cfg SimulationConfig) (*ControlVariateModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := float64(cfg.Steps)
	sigmaHat := cfg.Sigma * math.Sqrt((n+1)*(2*n+1)/(6*n*n))
	muHat := 0.5*sigmaHat*sigmaHat + (cfg.R-cfg.Dividend-0.5*cfg.Sigma*cfg.Sigma)*(n+1)/(2*n)

	sqrtT := math.Sqrt(cfg.T)
	d1 := (math.Log(cfg.S0/cfg.K) + (muHat+0.5*sigmaHat*sigmaHat)*cfg.T) / (sigmaHat * sqrtT)
	d2 := d1 - sigmaHat*sqrtT

	return &ControlVariateModel{
		Price: math.Exp(-cfg.R*cfg.T) * (cfg.S0*math.Exp(muHat*cfg.T)*normCDF(d1) - cfg.K*normCDF(d2)),
		Delta: math.Exp((muHat-cfg.R)*cfg.T) * normCDF(d1),
	}, nil
}

// normCDF 标准正态分布累积分布函数
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
