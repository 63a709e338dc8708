package domain

import (
	"fmt"
	"math"
)

// NormalSource 独立标准正态随机数来源。*math/rand.Rand 直接满足该接口。
// 随机源必须由调用方显式注入：可复现测试和跨调用复用同一组随机数
// (common random numbers) 都要求调用方完全掌控随机状态。
type NormalSource interface {
	NormFloat64() float64
}

// PathBatch GBM 对数价格路径批次，行主序连续存储。
// 行数为 Paths，对偶启用时为 2*Paths，第 i 行与第 i+Paths 行
// 的随机增量互为相反数。第 0 列恒为初始对数价格 X0。
type PathBatch struct {
	X0    float64
	Steps int // N
	Rows  int
	Pairs int // 对偶配对数，未启用时为 0
	grid  []float64
}

// At 返回第 row 行、第 col 个观测点的对数价格，col 取值 [0, Steps]
func (b *PathBatch) At(row, col int) float64 {
	return b.grid[row*(b.Steps+1)+col]
}

// TimeGrid 返回 [0,T] 上等距的 N+1 个时间点
func TimeGrid(T float64, steps int) []float64 {
	dt := T / float64(steps)
	grid := make([]float64, steps+1)
	for i := 1; i <= steps; i++ {
		grid[i] = float64(i) * dt
	}
	grid[steps] = T
	return grid
}

// SimulatePaths 生成一批 GBM 对数价格路径。
// 增量为 nu*dt + sigma*sqrt(dt)*z，路径为增量的逐行累加，起点 x0。
// antithetic 为真时行数翻倍，镜像行复用同一组 z 并取其相反数，
// 保证配对路径的随机累计增量精确互为相反数。
func SimulatePaths(T float64, steps int, x0, nu, sigma float64, paths int, antithetic bool, src NormalSource) (*PathBatch, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: %w (got %d)", ErrValidation, ErrInvalidSteps, steps)
	}
	if paths < 1 {
		return nil, fmt.Errorf("%w: need at least 1 path per batch (got %d)", ErrValidation, paths)
	}

	b := newPathBatch(x0, steps, paths, antithetic)
	fillPaths(b, 0, paths, T, nu, sigma, src)
	return b, nil
}

func newPathBatch(x0 float64, steps, paths int, antithetic bool) *PathBatch {
	rows, pairs := paths, 0
	if antithetic {
		rows, pairs = 2*paths, paths
	}
	return &PathBatch{
		X0:    x0,
		Steps: steps,
		Rows:  rows,
		Pairs: pairs,
		grid:  make([]float64, rows*(steps+1)),
	}
}

// fillPaths 填充 [from, from+count) 范围内的路径（及其镜像行）。
// 各区间互不重叠，并行填充时每个区间使用自己的随机源。
func fillPaths(b *PathBatch, from, count int, T, nu, sigma float64, src NormalSource) {
	dt := T / float64(b.Steps)
	drift := nu * dt
	vol := sigma * math.Sqrt(dt)
	stride := b.Steps + 1

	for i := from; i < from+count; i++ {
		base := i * stride
		b.grid[base] = b.X0
		if b.Pairs > 0 {
			mirror := (i + b.Pairs) * stride
			b.grid[mirror] = b.X0
			for j := 1; j <= b.Steps; j++ {
				z := vol * src.NormFloat64()
				b.grid[base+j] = b.grid[base+j-1] + drift + z
				b.grid[mirror+j] = b.grid[mirror+j-1] + drift - z
			}
		} else {
			for j := 1; j <= b.Steps; j++ {
				b.grid[base+j] = b.grid[base+j-1] + drift + vol*src.NormFloat64()
			}
		}
	}
}
