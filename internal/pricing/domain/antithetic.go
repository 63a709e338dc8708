package domain

import (
	"fmt"
)

// FoldAntithetic 将长度 2m 的逐行值按 (i, i+m) 配对取均值，折叠为长度 m。
// 配对结构由 SimulatePaths 建立；折叠必须发生在控制变量修正之后，
// 才能保留路径与其镜像之间的负相关收益。
func FoldAntithetic(values []float64, pairs int) ([]float64, error) {
	if pairs < 1 || len(values) != 2*pairs {
		return nil, fmt.Errorf("antithetic fold: expected %d values for %d pairs, got %d", 2*pairs, pairs, len(values))
	}
	folded := make([]float64, pairs)
	for i := 0; i < pairs; i++ {
		folded[i] = 0.5 * (values[i] + values[i+pairs])
	}
	return folded, nil
}
