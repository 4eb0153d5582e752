package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func usage(out io.Writer) {
	progName := filepath.Base(os.Args[0])
	fmt.Fprintf(out, `Estimates natural logarithm of the volume of the unit n-ball intersected with
the cube [-1/sqrt(s), 1/sqrt(s)]^n

Usage:
  %s -n N -s S [options]
  %s -n N -precompute [options]

Options:
  -n N           dimension
  -s S           scale, decimal number
  -prec P        working precision in bits (default 636)
  -terms T       number of series terms (default max(10n, 10000))
  -cache DIR     directory of precomputed terms (default "precomps")
  -nocache       keep precomputed terms in memory only
  -config FILE   YAML file with "precision", "terms", "cacheDir", "noCache" and
                 "verbose" settings; explicit options override it
  -verbose       report cache activity
  -precompute    only store terms for dimension N in the cache
  -check         compare with closed forms where they apply
  -usage         print resource usage at the end
  -params LIST   resources to report (default "Cpu,Mem,Threads")
`, progName, progName)
}
