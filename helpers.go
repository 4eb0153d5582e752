package ballcube

import (
	"fmt"
	"os"
)

// No data struct
var ND = struct{}{}

// Aid for unexpected errors without recovery
func AssertNoErr[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Recover from error - report it on stderr and assume default value
func AssumeOnErr[T any](f func() (T, error), defVal T) T {
	val, err := f()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s - using %v\n", err, defVal)
		return defVal
	}
	return val
}
