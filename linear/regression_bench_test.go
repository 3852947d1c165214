package linear

import (
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
)

// benchmarkDataset builds a noisy linear regression problem with a fixed
// seed so every run fits the same data.
func benchmarkDataset(b *testing.B, rows, cols int) *data.RegressionDataset {
	b.Helper()
	rng := rand.New(rand.NewPCG(42, 42))

	coefs := make([]float64, cols)
	for j := range coefs {
		coefs[j] = float64(j+1) * 0.5
	}

	ds := data.NewEmptyRegressionDataset(data.RowMajor, cols, nil)
	for i := 0; i < rows; i++ {
		features := make([]float64, cols)
		target := 1.0
		for j := range features {
			features[j] = rng.Float64()*2 - 1
			target += coefs[j] * features[j]
		}
		target += (rng.Float64() - 0.5) * 0.1
		if err := ds.AddPoint(data.NewPoint(features, nil), target); err != nil {
			b.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	return ds
}

func BenchmarkLinearRegressionFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x10", 100, 10},
		{"Small_500x10", 500, 10},
		{"Medium_1000x10", 1000, 10},
		{"Medium_2000x10", 2000, 10},
		{"Large_5000x20", 5000, 20},
		{"Large_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			ds := benchmarkDataset(b, size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegression()
				if err := lr.FitRegression(ds, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLinearRegressionFitParallel measures the pooled design matrix
// assembly on sizes above the sequential threshold.
func BenchmarkLinearRegressionFitParallel(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Large_5000x20", 5000, 20},
		{"Large_10000x20", 10000, 20},
		{"XLarge_20000x50", 20000, 50},
	}

	pool := parallel.NewPool(0)
	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			ds := benchmarkDataset(b, size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegression()
				if err := lr.FitRegression(ds, pool); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLinearRegressionPredict(b *testing.B) {
	ds := benchmarkDataset(b, 1000, 20)
	lr := NewLinearRegression()
	if err := lr.FitRegression(ds, nil); err != nil {
		b.Fatal(err)
	}
	p := ds.Point(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lr.Predict(p); err != nil {
			b.Fatal(err)
		}
	}
}
