package domain

import (
	"errors"
	"testing"

	"github.com/montanaflynn/stats"
)

func TestApplyControlVariate_HandComputed(t *testing.T) {
	// control 与 target 完全线性相关，c_hat=0.5，修正后应为常数
	target := []float64{1, 2, 3, 4}
	control := []float64{2, 4, 6, 8}

	est, err := ApplyControlVariate(target, control, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(est.Coefficient, 0.5, 1e-12) {
		t.Errorf("coefficient mismatch: got=%v want=0.5", est.Coefficient)
	}
	if est.Degenerate {
		t.Error("unexpected degenerate flag")
	}
	for i, v := range est.Corrected {
		if !almostEqual(v, 2.5, 1e-12) {
			t.Errorf("corrected[%d]: got=%v want=2.5", i, v)
		}
	}
}

func TestApplyControlVariate_MeanShiftIdentity(t *testing.T) {
	// 逐行修正的代数恒等式：mean(corrected) = mean(target) - c_hat*(mean(control) - analyticMean)
	target := []float64{0.3, 1.7, 0.0, 2.4, 0.9, 1.1}
	control := []float64{0.2, 1.5, 0.1, 2.0, 1.0, 0.8}
	const analyticMean = 0.95

	est, err := ApplyControlVariate(target, control, analyticMean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mt, _ := stats.Mean(target)
	mc, _ := stats.Mean(control)
	mcorr, _ := stats.Mean(est.Corrected)
	want := mt - est.Coefficient*(mc-analyticMean)
	if !almostEqual(mcorr, want, 1e-12) {
		t.Errorf("mean shift identity violated: got=%v want=%v", mcorr, want)
	}
}

func TestApplyControlVariate_DegenerateControl(t *testing.T) {
	target := []float64{1, 2, 3, 4}
	control := []float64{3, 3, 3, 3}

	est, err := ApplyControlVariate(target, control, 3)
	if err != nil {
		t.Fatalf("degenerate control must not error: %v", err)
	}
	if !est.Degenerate {
		t.Fatal("expected degenerate flag")
	}
	if est.Coefficient != 0 {
		t.Errorf("degenerate coefficient must be 0, got %v", est.Coefficient)
	}
	for i := range target {
		if est.Corrected[i] != target[i] {
			t.Errorf("degenerate correction must be identity, corrected[%d]=%v", i, est.Corrected[i])
		}
	}
}

func TestApplyControlVariate_InvalidInputs(t *testing.T) {
	if _, err := ApplyControlVariate([]float64{1, 2}, []float64{1}, 0); err == nil {
		t.Fatal("expected error for length mismatch")
	}
	if _, err := ApplyControlVariate([]float64{1}, []float64{1}, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for n<2, got %v", err)
	}
}

func TestFoldAntithetic(t *testing.T) {
	folded, err := FoldAntithetic([]float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folded) != 2 || folded[0] != 2 || folded[1] != 3 {
		t.Fatalf("unexpected fold result: %v", folded)
	}

	if _, err := FoldAntithetic([]float64{1, 2, 3}, 2); err == nil {
		t.Fatal("expected error for length mismatch")
	}
	if _, err := FoldAntithetic(nil, 0); err == nil {
		t.Fatal("expected error for zero pairs")
	}
}
