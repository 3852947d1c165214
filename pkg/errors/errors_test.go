package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Wagging.FitRegression",
			kind:     "member training failed",
			err:      fmt.Errorf("test error"),
			wantMsg:  "ensgo: Wagging.FitRegression: member training failed: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "LinearRegression.Fit",
			kind:     "singular system",
			err:      nil,
			wantMsg:  "ensgo: LinearRegression.Fit: singular system",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			// ModelError型にキャスト可能か確認
			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 7, 1)

	// 基本的なエラーメッセージの確認
	want := "ensgo: Predict: dimension mismatch on axis 1 (features). Expected 10, got 7"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// DimensionError型にキャスト可能か確認
	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewIndexError(t *testing.T) {
	err := NewIndexError("Dataset.Subset", 12, 10)

	want := "ensgo: Dataset.Subset: index 12 out of range [0, 10)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// IndexError型にキャスト可能か確認
	var idxErr *IndexError
	if !As(err, &idxErr) {
		t.Error("Error should be castable to *IndexError")
	}
	if idxErr.Index != 12 || idxErr.Size != 10 {
		t.Errorf("IndexError fields = (%d, %d), want (12, 10)", idxErr.Index, idxErr.Size)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("StochasticGradientBoosting", "Predict")

	// 基本的なエラーメッセージの確認
	want := "ensgo: StochasticGradientBoosting: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// NotFittedError型にキャスト可能か確認
	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValueError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		param   string
		value   interface{}
		message string
		wantMsg string
	}{
		{
			name:    "with message",
			op:      "SetWeight",
			param:   "weight",
			value:   -0.5,
			message: "must be positive",
			wantMsg: "ensgo: SetWeight: weight: -0.5 (must be positive)",
		},
		{
			name:    "without message",
			op:      "NewCategorical",
			param:   "cardinality",
			value:   0,
			message: "",
			wantMsg: "ensgo: NewCategorical: cardinality: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.message != "" {
				err = NewValueError(tt.op, fmt.Sprintf("%s: %v (%s)", tt.param, tt.value, tt.message))
			} else {
				err = NewValueError(tt.op, fmt.Sprintf("%s: %v", tt.param, tt.value))
			}

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// ValueError型にキャスト可能か確認
			var valErr *ValueError
			if !As(err, &valErr) {
				t.Error("Error should be castable to *ValueError")
			}
		})
	}
}

func TestNewWeightClampWarning(t *testing.T) {
	warn := NewWeightClampWarning("Wagging.FitRegression", 3, 1e-6)

	want := "Wagging.FitRegression: 3 non-positive weight draw(s) clamped to 1e-06"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}

	// WeightClampWarning型へのキャストのみ確認
	var clampWarn *WeightClampWarning
	if !As(warn, &clampWarn) {
		t.Error("Warning should be castable to *WeightClampWarning")
	}
}

func TestWarnHandler(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer SetWarningHandler(func(w error) {})

	warn := NewUndefinedMetricWarning("r2", "zero variance in targets", 0)
	Warn(warn)

	if len(captured) != 1 {
		t.Fatalf("expected 1 captured warning, got %d", len(captured))
	}
	if !strings.Contains(captured[0].Error(), "r2") {
		t.Errorf("captured warning = %v, want mention of metric name", captured[0])
	}
}

func TestWrapAndIs(t *testing.T) {
	// 元のエラー
	baseErr := ErrSingularMatrix

	// ラップ
	wrapped := Wrap(baseErr, "in LinearRegression.FitRegression")

	// Is関数でチェック
	if !Is(wrapped, ErrSingularMatrix) {
		t.Error("Expected Is(wrapped, ErrSingularMatrix) to be true")
	}

	// エラーメッセージの確認
	if !strings.Contains(wrapped.Error(), "in LinearRegression.FitRegression") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	// 元のエラー
	baseErr := ErrEmptyData

	// フォーマット付きラップ
	wrapped := Wrapf(baseErr, "in %s: expected %d, got %d", "Subset", 10, 0)

	// Is関数でチェック
	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	// エラーメッセージの確認
	expectedMsg := "in Subset: expected 10, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestErrorChaining(t *testing.T) {
	// エラーチェーンの作成
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	// チェーン全体を確認
	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	// スタックトレースの確認（詳細表示）
	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}
