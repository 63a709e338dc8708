package domain

import (
	"math"
	"math/rand"
	"sync"
)

// MonteCarloResult 价格与 Delta 的点估计、95% 置信区间及本次调用的
// 控制变量诊断信息
type MonteCarloResult struct {
	Price      float64
	PriceLower float64
	PriceUpper float64
	Delta      float64
	DeltaLower float64
	DeltaUpper float64

	// 解析几何平均锚点，控制变量的已知期望
	AnalyticPrice float64
	AnalyticDelta float64

	// 两个序列各自独立估计的控制变量系数；对应控制变量方差退化时
	// 系数为 0 且标记为真
	PriceCoefficient       float64
	DeltaCoefficient       float64
	PriceControlDegenerate bool
	DeltaControlDegenerate bool
}

// Engine 蒙特卡洛定价编排器。
// Workers > 1 时路径按区间切分并行生成，每个区间使用由种子确定性
// 派生的独立随机源，(seed, workers) 固定则结果逐位可复现。
// 汇总按行号写入共享批次的互不重叠区间，合并顺序不影响结果。
type Engine struct {
	Workers int
}

// NewEngine 创建编排器，workers<=1 表示单线程
func NewEngine(workers int) *Engine {
	return &Engine{Workers: workers}
}

// PriceAsianCall 用注入的随机源完成一次完整的价格+Delta 估计。
// 单次确定性流程，无重试：同一配置与同一随机源状态产出逐位相同的结果。
func (e *Engine) PriceAsianCall(cfg SimulationConfig, src NormalSource) (*MonteCarloResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	batch, err := SimulatePaths(cfg.T, cfg.Steps, logSpot(cfg), cfg.LogDrift(), cfg.Sigma, cfg.Paths, cfg.Antithetic, src)
	if err != nil {
		return nil, err
	}
	return e.estimate(cfg, batch)
}

// PriceAsianCallSeeded 用显式种子完成一次估计。Workers > 1 时按区间并行。
func (e *Engine) PriceAsianCallSeeded(cfg SimulationConfig, seed int64) (*MonteCarloResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workers := e.Workers
	if workers > cfg.Paths {
		workers = cfg.Paths
	}
	if workers <= 1 {
		return e.PriceAsianCall(cfg, rand.New(rand.NewSource(seed)))
	}

	batch := newPathBatch(logSpot(cfg), cfg.Steps, cfg.Paths, cfg.Antithetic)

	// 区间种子由父源确定性派生，各区间的随机流互不相交
	parent := rand.New(rand.NewSource(seed))
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = parent.Int63()
	}

	var wg sync.WaitGroup
	chunk := cfg.Paths / workers
	rest := cfg.Paths % workers
	from := 0
	for c := 0; c < workers; c++ {
		count := chunk
		if c < rest {
			count++
		}
		wg.Add(1)
		go func(from, count int, seed int64) {
			defer wg.Done()
			fillPaths(batch, from, count, cfg.T, cfg.LogDrift(), cfg.Sigma, rand.New(rand.NewSource(seed)))
		}(from, count, seeds[c])
		from += count
	}
	wg.Wait()

	return e.estimate(cfg, batch)
}

// estimate 共享同一路径批次完成价格与 Delta 两条估计链。
// 两条链复用同一组随机数（common random numbers），价格与 Delta
// 估计在统计上保持一致。
func (e *Engine) estimate(cfg SimulationConfig, batch *PathBatch) (*MonteCarloResult, error) {
	model, err := GeometricAsianCall(cfg)
	if err != nil {
		return nil, err
	}

	sample := EvaluatePayoffs(batch, cfg.S0, cfg.K, cfg.R, cfg.T)
	priceVals := sample.Arithmetic
	deltaVals := sample.ArithmeticDelta

	res := &MonteCarloResult{
		AnalyticPrice: model.Price,
		AnalyticDelta: model.Delta,
	}

	if cfg.UseControlVariate {
		// 价格与 Delta 序列各自独立估计系数
		priceEst, err := ApplyControlVariate(sample.Arithmetic, sample.Geometric, model.Price)
		if err != nil {
			return nil, err
		}
		deltaEst, err := ApplyControlVariate(sample.ArithmeticDelta, sample.GeometricDelta, model.Delta)
		if err != nil {
			return nil, err
		}
		priceVals, deltaVals = priceEst.Corrected, deltaEst.Corrected
		res.PriceCoefficient, res.PriceControlDegenerate = priceEst.Coefficient, priceEst.Degenerate
		res.DeltaCoefficient, res.DeltaControlDegenerate = deltaEst.Coefficient, deltaEst.Degenerate
	}

	if cfg.Antithetic {
		// 折叠必须在控制变量修正之后进行
		if priceVals, err = FoldAntithetic(priceVals, batch.Pairs); err != nil {
			return nil, err
		}
		if deltaVals, err = FoldAntithetic(deltaVals, batch.Pairs); err != nil {
			return nil, err
		}
	}

	priceCI, err := ConfidenceInterval(priceVals)
	if err != nil {
		return nil, err
	}
	deltaCI, err := ConfidenceInterval(deltaVals)
	if err != nil {
		return nil, err
	}

	res.Price, res.PriceLower, res.PriceUpper = priceCI.Estimate, priceCI.Lower, priceCI.Upper
	res.Delta, res.DeltaLower, res.DeltaUpper = deltaCI.Estimate, deltaCI.Lower, deltaCI.Upper
	return res, nil
}

func logSpot(cfg SimulationConfig) float64 {
	return math.Log(cfg.S0)
}
