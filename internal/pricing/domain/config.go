// Package domain 包含亚式期权蒙特卡洛定价的领域模型与数值核心
package domain

import (
	"errors"
	"fmt"
)

// ErrValidation 标记所有配置校验错误，接口层用 errors.Is 统一映射为 400
var ErrValidation = errors.New("invalid simulation config")

var (
	ErrInvalidSpot       = errors.New("spot price must be positive")
	ErrInvalidStrike     = errors.New("strike price must be positive")
	ErrInvalidMaturity   = errors.New("time to maturity must be positive")
	ErrInvalidVolatility = errors.New("volatility must be positive")
	ErrInvalidDividend   = errors.New("dividend yield must be non-negative")
	ErrInvalidSteps      = errors.New("number of time steps must be at least 1")
	ErrInvalidPaths      = errors.New("number of paths must be at least 2")
)

// SimulationConfig 一次定价调用的输入参数，调用方只读
type SimulationConfig struct {
	S0       float64 // 标的初始价格
	K        float64 // 执行价格
	T        float64 // 到期时间 (年)
	R        float64 // 无风险利率
	Sigma    float64 // 年化波动率
	Dividend float64 // 连续股息率
	Steps    int     // 时间步数 N，平均价按 N 个观测日计算
	Paths    int     // 模拟路径数，对偶启用时为配对数
	// Antithetic 启用对偶变量：每条路径与其镜像配对，折叠后样本量仍为 Paths
	Antithetic bool
	// UseControlVariate 启用几何平均闭式价作为控制变量
	UseControlVariate bool
}

// Validate 校验模拟参数。路径数下限为 2，样本方差在 n<2 时无定义。
func (c SimulationConfig) Validate() error {
	switch {
	case c.S0 <= 0:
		return fmt.Errorf("%w: %w (got %v)", ErrValidation, ErrInvalidSpot, c.S0)
	case c.K <= 0:
		return fmt.Errorf("%w: %w (got %v)", ErrValidation, ErrInvalidStrike, c.K)
	case c.T <= 0:
		return fmt.Errorf("%w: %w (got %v)", ErrValidation, ErrInvalidMaturity, c.T)
	case c.Sigma <= 0:
		return fmt.Errorf("%w: %w (got %v)", ErrValidation, ErrInvalidVolatility, c.Sigma)
	case c.Dividend < 0:
		return fmt.Errorf("%w: %w (got %v)", ErrValidation, ErrInvalidDividend, c.Dividend)
	case c.Steps < 1:
		return fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidSteps, c.Steps)
	case c.Paths < 2:
		return fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidPaths, c.Paths)
	}
	return nil
}

// LogDrift 对数价格的漂移项 nu = r - delta - sigma^2/2
func (c SimulationConfig) LogDrift() float64 {
	return c.R - c.Dividend - 0.5*c.Sigma*c.Sigma
}
