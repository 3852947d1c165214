package metrics

import (
	"math"
	"testing"
)

func TestMostLikely(t *testing.T) {
	tests := []struct {
		name string
		dist []float64
		want int
	}{
		{"clear winner", []float64{0.1, 0.7, 0.2}, 1},
		{"first wins ties", []float64{0.4, 0.4, 0.2}, 0},
		{"single class", []float64{1.0}, 0},
		{"uniform", []float64{0.25, 0.25, 0.25, 0.25}, 0},
		{"empty", nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MostLikely(tt.dist); got != tt.want {
				t.Errorf("MostLikely(%v) = %d, want %d", tt.dist, got, tt.want)
			}
		})
	}
}

func TestDisagreements(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    int
		wantErr bool
	}{
		{
			name:  "all agree",
			yTrue: []int{0, 1, 0, 1},
			yPred: []int{0, 1, 0, 1},
			want:  0,
		},
		{
			name:  "two wrong",
			yTrue: []int{0, 1, 0, 1, 0},
			yPred: []int{0, 0, 0, 1, 1},
			want:  2,
		},
		{
			name:  "all wrong",
			yTrue: []int{0, 0},
			yPred: []int{1, 1},
			want:  2,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []int{0, 1},
			yPred:   []int{0},
			wantErr: true,
		},
		{
			name:    "empty input",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Disagreements(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Disagreements() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Disagreements() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorRateAndAccuracy(t *testing.T) {
	yTrue := []int{0, 1, 1, 0, 1, 0, 1, 1}
	yPred := []int{0, 1, 0, 0, 1, 1, 1, 1}

	rate, err := ErrorRate(yTrue, yPred)
	if err != nil {
		t.Fatalf("ErrorRate() error = %v", err)
	}
	if want := 0.25; math.Abs(rate-want) > 1e-12 {
		t.Errorf("ErrorRate() = %v, want %v", rate, want)
	}

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy() error = %v", err)
	}
	if want := 0.75; math.Abs(acc-want) > 1e-12 {
		t.Errorf("Accuracy() = %v, want %v", acc, want)
	}

	if _, err := ErrorRate([]int{0}, []int{0, 1}); err == nil {
		t.Error("ErrorRate() with mismatched inputs succeeded")
	}
}
