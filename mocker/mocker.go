// Package mocker swaps package state in unit tests.
package mocker

import "os"

// Replaces an item (function or variable) and returns its restorer:
//
//	defer mocker.ReplaceItem(&orgVal, newVal)()
//
// - note extra brackets.
func ReplaceItem[T any](orgVal *T, newVal T) func() {
	saveVal := *orgVal
	*orgVal = newVal
	return func() { *orgVal = saveVal }
}

// Changes working directory and returns its restorer:
//
//	defer mocker.Chdir(t.TempDir())()
func Chdir(dir string) func() {
	saveDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err = os.Chdir(dir); err != nil {
		panic(err)
	}
	return func() { _ = os.Chdir(saveDir) }
}
