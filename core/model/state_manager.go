// Package model provides state management for machine learning models.
package model

import (
	"sync"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// It replaces the BaseEstimator embedding pattern with composition.
type StateManager struct {
	fitted bool
	mu     sync.RWMutex

	// Schema seen during fitting, used to reject mismatched points later.
	nNumeric     int
	nCategorical int
	nSamples     int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// Reset resets the fitted state and the recorded schema.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nNumeric = 0
	s.nCategorical = 0
	s.nSamples = 0
}

// SetDimensions records the schema and sample count seen during fitting.
func (s *StateManager) SetDimensions(nNumeric, nCategorical, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nNumeric = nNumeric
	s.nCategorical = nCategorical
	s.nSamples = nSamples
}

// GetDimensions returns the schema and sample count seen during fitting.
func (s *StateManager) GetDimensions() (nNumeric, nCategorical, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nNumeric, s.nCategorical, s.nSamples
}

// RequireFitted returns a NotFittedError naming the model and the method
// that was called too early, or nil if the model has been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// CheckPoint verifies that a point's shape matches the schema recorded at
// fit time. op names the calling method for error messages.
func (s *StateManager) CheckPoint(op string, gotNumeric, gotCategorical int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gotNumeric != s.nNumeric {
		return errors.NewDimensionError(op, s.nNumeric, gotNumeric, 1)
	}
	if gotCategorical != s.nCategorical {
		return errors.NewDimensionError(op, s.nCategorical, gotCategorical, 1)
	}
	return nil
}

// Clone returns an independent copy of the state.
func (s *StateManager) Clone() *StateManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StateManager{
		fitted:       s.fitted,
		nNumeric:     s.nNumeric,
		nCategorical: s.nCategorical,
		nSamples:     s.nSamples,
	}
}
