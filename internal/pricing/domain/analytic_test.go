package domain

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGeometricAsianCall_ReferenceCases(t *testing.T) {
	cases := []struct {
		name        string
		cfg         SimulationConfig
		wantPrice   float64
		wantDelta   float64
	}{
		{
			// 回归基准：与独立实现比对的参考值
			name:      "short_dated_itm",
			cfg:       SimulationConfig{S0: 11, K: 10, T: 0.25, R: 0.02, Sigma: 0.3, Dividend: 0.01, Steps: 10, Paths: 2},
			wantPrice: 1.0677302698111504,
			wantDelta: 0.8519714896737152,
		},
		{
			name:      "atm_one_year",
			cfg:       SimulationConfig{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2, Steps: 10, Paths: 2},
			wantPrice: 6.01911607933648,
			wantDelta: 0.5861143089318667,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := GeometricAsianCall(tc.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(model.Price, tc.wantPrice, 1e-9) {
				t.Errorf("price mismatch: got=%v want=%v", model.Price, tc.wantPrice)
			}
			if !almostEqual(model.Delta, tc.wantDelta, 1e-9) {
				t.Errorf("delta mismatch: got=%v want=%v", model.Delta, tc.wantDelta)
			}
		})
	}
}

func TestGeometricAsianCall_DeltaBounds(t *testing.T) {
	model, err := GeometricAsianCall(SimulationConfig{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2, Steps: 50, Paths: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Delta <= 0 || model.Delta >= 1 {
		t.Errorf("call delta out of (0,1): %v", model.Delta)
	}
	if model.Price <= 0 {
		t.Errorf("expected positive price, got %v", model.Price)
	}
}

func TestGeometricAsianCall_InvalidInputs(t *testing.T) {
	base := SimulationConfig{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2, Steps: 10, Paths: 2}

	cases := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"non_positive_spot", func(c *SimulationConfig) { c.S0 = 0 }},
		{"non_positive_strike", func(c *SimulationConfig) { c.K = -1 }},
		{"non_positive_maturity", func(c *SimulationConfig) { c.T = 0 }},
		{"non_positive_volatility", func(c *SimulationConfig) { c.Sigma = 0 }},
		{"negative_dividend", func(c *SimulationConfig) { c.Dividend = -0.01 }},
		{"zero_steps", func(c *SimulationConfig) { c.Steps = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if _, err := GeometricAsianCall(cfg); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
