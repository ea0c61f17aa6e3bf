package helpers

import (
	"reflect"
)

// FunctionMocker swaps package-level function variables for test doubles
// and restores the originals afterwards.
type FunctionMocker struct {
	restoreFuncs []func()
}

// NewFunctionMocker creates a new FunctionMocker.
func NewFunctionMocker() *FunctionMocker {
	return &FunctionMocker{
		restoreFuncs: make([]func(), 0),
	}
}

// MockFunc replaces the function variable pointed to by funcPtr with mockImpl.
// funcPtr must be a pointer to a function variable.
func (m *FunctionMocker) MockFunc(funcPtr interface{}, mockImpl interface{}) *FunctionMocker {
	funcPtrValue := reflect.ValueOf(funcPtr)
	if funcPtrValue.Kind() != reflect.Ptr {
		panic("funcPtr must be a pointer to a function variable")
	}

	funcValue := funcPtrValue.Elem()
	mockValue := reflect.ValueOf(mockImpl)

	// Save a copy of the original so Restore can put it back.
	originalFunc := reflect.New(funcValue.Type()).Elem()
	if funcValue.IsValid() && !funcValue.IsNil() {
		originalFunc.Set(funcValue)
	}

	funcValue.Set(mockValue)

	m.restoreFuncs = append(m.restoreFuncs, func() {
		if originalFunc.IsValid() && !originalFunc.IsNil() {
			funcValue.Set(originalFunc)
		} else {
			funcValue.Set(reflect.Zero(funcValue.Type()))
		}
	})

	return m
}

// Restore puts all mocked function variables back, most recent first.
func (m *FunctionMocker) Restore() {
	for i := len(m.restoreFuncs) - 1; i >= 0; i-- {
		m.restoreFuncs[i]()
	}
	m.restoreFuncs = nil
}
