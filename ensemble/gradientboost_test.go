package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

func TestNewStochasticGradientBoostingValidation(t *testing.T) {
	if _, err := NewStochasticGradientBoosting(nil, 10); err == nil {
		t.Error("expected error for nil base")
	}

	tests := []struct {
		name string
		n    int
		opts []BoostOption
	}{
		{name: "negative stages", n: -1},
		{name: "zero shrinkage", n: 10, opts: []BoostOption{WithShrinkage(0)}},
		{name: "shrinkage above one", n: 10, opts: []BoostOption{WithShrinkage(1.5)}},
		{name: "zero subsample", n: 10, opts: []BoostOption{WithSubsample(0)}},
		{name: "subsample above one", n: 10, opts: []BoostOption{WithSubsample(1.2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStochasticGradientBoosting(&constRegressor{}, tt.n, tt.opts...)
			var valErr *errors.ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	s, err := NewStochasticGradientBoosting(&constRegressor{}, 5, WithShrinkage(1), WithSubsample(1))
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if s.Stages() != 5 {
		t.Errorf("Stages() = %d, want 5", s.Stages())
	}
	if s.Shrinkage() != 1 {
		t.Errorf("Shrinkage() = %v, want 1", s.Shrinkage())
	}
}

func TestBoostingConstantModel(t *testing.T) {
	ds := makeRegression(t, 10)
	if err := ds.SetWeight(0, 5); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}

	rec := &recorder{}
	s, err := NewStochasticGradientBoosting(&constRegressor{rec: rec}, 0)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := s.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	if !s.IsFitted() {
		t.Fatal("zero-stage model must still be fitted")
	}
	if rec.len() != 0 {
		t.Fatalf("zero stages trained %d learners", rec.len())
	}

	want := stat.Mean(ds.Targets(), ds.Weights())
	for _, i := range []int{0, 4, 9} {
		got, err := s.Predict(ds.Point(i))
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if got != want {
			t.Errorf("Predict(%d) = %v, want weighted mean %v", i, got, want)
		}
	}
}

func TestBoostingResidualSequence(t *testing.T) {
	const (
		stages = 3
		value  = 2.0
	)
	ds := makeRegression(t, 10)
	rec := &recorder{}

	s, err := NewStochasticGradientBoosting(&constRegressor{rec: rec, value: value}, stages)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := s.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	if rec.len() != stages {
		t.Fatalf("trained %d stages, want %d", rec.len(), stages)
	}

	// Replay the accumulation: every stage must have seen the targets minus
	// the model so far, and the full dataset at subsample 1.
	acc := make([]float64, ds.Size())
	f0 := stat.Mean(ds.Targets(), ds.Weights())
	for i := range acc {
		acc[i] = f0
	}
	for stage := 0; stage < stages; stage++ {
		run := rec.runs[stage]
		if len(run.targets) != ds.Size() {
			t.Fatalf("stage %d saw %d rows, want %d", stage, len(run.targets), ds.Size())
		}
		for i := range acc {
			if want := ds.Target(i) - acc[i]; run.targets[i] != want {
				t.Errorf("stage %d residual[%d] = %v, want %v", stage, i, run.targets[i], want)
			}
			if run.weights[i] != 1 {
				t.Errorf("stage %d weight[%d] = %v, want 1", stage, i, run.weights[i])
			}
		}
		for i := range acc {
			acc[i] += s.Shrinkage() * value
		}
	}

	want := f0
	for stage := 0; stage < stages; stage++ {
		want += s.Shrinkage() * value
	}
	got, err := s.Predict(ds.Point(5))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != want {
		t.Errorf("Predict = %v, want %v", got, want)
	}
}

func TestBoostingPrefixStability(t *testing.T) {
	const (
		seed     = uint64(5)
		fraction = 0.8
	)
	ds := makeRegression(t, 10)

	recShort := &recorder{}
	short, err := NewStochasticGradientBoosting(&constRegressor{rec: recShort, value: 1}, 2,
		WithSubsample(fraction), WithSeed(seed))
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := short.FitRegression(ds, nil); err != nil {
		t.Fatalf("short fit: %v", err)
	}

	recLong := &recorder{}
	long, err := NewStochasticGradientBoosting(&constRegressor{rec: recLong, value: 1}, 5,
		WithSubsample(fraction), WithSeed(seed))
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := long.FitRegression(ds, nil); err != nil {
		t.Fatalf("long fit: %v", err)
	}

	// A stage draws its subsample from its own stream, so the first stages
	// of the longer run replay the shorter run exactly.
	wantRows := int(fraction * 10)
	for stage := 0; stage < 2; stage++ {
		a, b := recShort.runs[stage], recLong.runs[stage]
		if len(a.targets) != wantRows || len(b.targets) != wantRows {
			t.Fatalf("stage %d rows = %d/%d, want %d", stage, len(a.targets), len(b.targets), wantRows)
		}
		if !float64sEqual(a.targets, b.targets) {
			t.Errorf("stage %d residuals diverge between run lengths", stage)
		}
		if !float64sEqual(a.weights, b.weights) {
			t.Errorf("stage %d weights diverge between run lengths", stage)
		}
	}

	// The longer model differs from the shorter one by exactly the extra
	// stage contributions.
	probe := ds.Point(3)
	shortPred, err := short.Predict(probe)
	if err != nil {
		t.Fatalf("short predict: %v", err)
	}
	longPred, err := long.Predict(probe)
	if err != nil {
		t.Fatalf("long predict: %v", err)
	}
	if extra := longPred - shortPred; math.Abs(extra-3*0.1) > 1e-9 {
		t.Errorf("extra stages contribute %v, want 0.3", extra)
	}
}

func TestBoostingDeterministicSubsample(t *testing.T) {
	ds := makeRegression(t, 12)

	streams := make([][]trainRun, 2)
	for attempt := range streams {
		rec := &recorder{}
		s, err := NewStochasticGradientBoosting(&constRegressor{rec: rec, value: 1}, 3,
			WithSubsample(0.5), WithSeed(77))
		if err != nil {
			t.Fatalf("NewStochasticGradientBoosting: %v", err)
		}
		if err := s.FitRegression(ds, nil); err != nil {
			t.Fatalf("FitRegression: %v", err)
		}
		streams[attempt] = rec.runs
	}

	if len(streams[0]) != len(streams[1]) {
		t.Fatalf("stage counts differ: %d vs %d", len(streams[0]), len(streams[1]))
	}
	for stage := range streams[0] {
		if len(streams[0][stage].targets) != 6 {
			t.Errorf("stage %d rows = %d, want 6", stage, len(streams[0][stage].targets))
		}
		if !float64sEqual(streams[0][stage].targets, streams[1][stage].targets) {
			t.Errorf("stage %d drew different rows across identical runs", stage)
		}
	}
}

func TestBoostingInitialRegressor(t *testing.T) {
	ds := makeRegression(t, 8)
	initRec := &recorder{}
	weakRec := &recorder{}

	s, err := NewStochasticGradientBoosting(&constRegressor{rec: weakRec, value: 1}, 2,
		WithInitialRegressor(&constRegressor{rec: initRec, value: 5}))
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := s.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}

	if initRec.len() != 1 {
		t.Fatalf("initial regressor trained %d times, want 1", initRec.len())
	}
	for i, target := range initRec.runs[0].targets {
		if want := ds.Target(i); target != want {
			t.Errorf("initial regressor target[%d] = %v, want raw %v", i, target, want)
		}
	}

	if weakRec.len() != 2 {
		t.Fatalf("weak regressor trained %d times, want 2", weakRec.len())
	}
	for i, target := range weakRec.runs[0].targets {
		if want := ds.Target(i) - 5; target != want {
			t.Errorf("stage 0 residual[%d] = %v, want %v", i, target, want)
		}
	}

	want := 5.0
	want += s.Shrinkage() * 1
	want += s.Shrinkage() * 1
	got, err := s.Predict(ds.Point(0))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != want {
		t.Errorf("Predict = %v, want %v", got, want)
	}
}

func TestBoostingAbortOnStageFailure(t *testing.T) {
	var calls int32
	s, err := NewStochasticGradientBoosting(&flakyRegressor{calls: &calls, failOn: 2}, 4)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}

	err = s.FitRegression(makeRegression(t, 6), nil)
	if err == nil {
		t.Fatal("expected stage failure to abort the fit")
	}
	var modelErr *errors.ModelError
	if !errors.As(err, &modelErr) {
		t.Errorf("expected ModelError, got %v", err)
	}
	if s.IsFitted() {
		t.Error("failed fit must leave the trainer unfitted")
	}
	var notFitted *errors.NotFittedError
	if _, err := s.Predict(data.NewPoint([]float64{1, 2}, nil)); !errors.As(err, &notFitted) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
}

func TestBoostingPanicIsRecovered(t *testing.T) {
	s, err := NewStochasticGradientBoosting(panickyRegressor{}, 3)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	err = s.FitRegression(makeRegression(t, 6), nil)
	if err == nil {
		t.Fatal("expected panic to surface as error")
	}
	var panicErr *errors.PanicError
	if !errors.As(err, &panicErr) {
		t.Errorf("expected PanicError, got %v", err)
	}
	if s.IsFitted() {
		t.Error("panicking stage must leave the trainer unfitted")
	}
}

func TestBoostingCloneIsolation(t *testing.T) {
	first := makeRegression(t, 10)
	second := makeRegression(t, 30)

	s, err := NewStochasticGradientBoosting(&meanRegressor{}, 2)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}
	if err := s.FitRegression(first, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}

	probe := first.Point(4)
	before, err := s.Predict(probe)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	clone := s.CloneRegressor()
	cloned, ok := clone.(*StochasticGradientBoosting)
	if !ok {
		t.Fatalf("CloneRegressor returned %T", clone)
	}
	got, err := cloned.Predict(probe)
	if err != nil {
		t.Fatalf("clone Predict: %v", err)
	}
	if got != before {
		t.Errorf("clone predicts %v, original %v", got, before)
	}

	if err := cloned.FitRegression(second, nil); err != nil {
		t.Fatalf("clone retrain: %v", err)
	}
	after, err := s.Predict(probe)
	if err != nil {
		t.Fatalf("Predict after clone retrain: %v", err)
	}
	if after != before {
		t.Errorf("original changed from %v to %v after clone retrain", before, after)
	}
}

func TestBoostingShapeAndEmptyChecks(t *testing.T) {
	s, err := NewStochasticGradientBoosting(&constRegressor{value: 1}, 1)
	if err != nil {
		t.Fatalf("NewStochasticGradientBoosting: %v", err)
	}

	var notFitted *errors.NotFittedError
	if _, err := s.Predict(data.NewPoint([]float64{1, 2}, nil)); !errors.As(err, &notFitted) {
		t.Errorf("expected NotFittedError before training, got %v", err)
	}

	empty := data.NewEmptyRegressionDataset(data.RowMajor, 2, nil)
	if err := s.FitRegression(empty, nil); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}

	if err := s.FitRegression(makeRegression(t, 6), nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	var dimErr *errors.DimensionError
	if _, err := s.Predict(data.NewPoint([]float64{1}, nil)); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for a 1-feature point, got %v", err)
	}
}
