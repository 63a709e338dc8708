package domain

import (
	"errors"
	"testing"
)

func TestConfidenceInterval_HandComputed(t *testing.T) {
	// mean=3, s=sqrt(2.5), half-width = z*s/sqrt(5)
	res, err := ConfidenceInterval([]float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(res.Estimate, 3, 1e-12) {
		t.Errorf("estimate: got=%v want=3", res.Estimate)
	}
	if !almostEqual(res.Lower, 1.6140961756503223, 1e-9) {
		t.Errorf("lower: got=%v", res.Lower)
	}
	if !almostEqual(res.Upper, 4.385903824349677, 1e-9) {
		t.Errorf("upper: got=%v", res.Upper)
	}
	if !almostEqual(res.Upper-res.Estimate, res.Estimate-res.Lower, 1e-12) {
		t.Error("interval must be symmetric around the estimate")
	}
}

func TestConfidenceInterval_ConstantSample(t *testing.T) {
	// 零方差样本：区间宽度为 0，不产生 NaN
	res, err := ConfidenceInterval([]float64{2, 2, 2, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Width() != 0 || res.Estimate != 2 {
		t.Fatalf("unexpected result for constant sample: %+v", res)
	}
}

func TestConfidenceInterval_TooFewObservations(t *testing.T) {
	if _, err := ConfidenceInterval([]float64{1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ConfidenceInterval(nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
