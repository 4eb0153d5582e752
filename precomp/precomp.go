// Package precomp keeps precomputed series terms on disk.
//
// One YAML file per (dimension, precision) pair holds the terms f(2πk/n)^n of
// the Fresnel series as decimal strings. Files grow as more terms are requested.
package precomp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aknopov/ballcube/bigc"
	"github.com/aknopov/fancylogger"
	"github.com/ericlagergren/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// Default cache directory relative to the working directory
	DefaultDir = "precomps"
)

var (
	ErrNotPrecomputed = errors.New("ensure precomputation for dimension and precision")
	ErrMissingTerms   = errors.New("some k are missing for dimension and precision")
	ErrCorrupted      = errors.New("corrupted precomputation file")
)

var (
	logger = fancylogger.NewLogger(os.Stderr, fancylogger.LiteFg)
)

// Precomputed terms by index k
type Table map[int]bigc.Complex

// Function that computes k-th term
type TermFunc func(k int) bigc.Complex

// Cache of precomputed terms in directory `Dir`
type Cache struct {
	Dir     string
	Verbose bool
	lock    sync.Mutex // file updates guard
}

type record struct {
	Dim       int         `yaml:"dim"`
	Precision uint        `yaml:"precision"`
	Terms     []termEntry `yaml:"terms"`
}

type termEntry struct {
	K  int    `yaml:"k"`
	Re string `yaml:"re"`
	Im string `yaml:"im"`
}

// Creates a cache in `dir`; empty name means DefaultDir
func New(dir string) *Cache {
	if dir == "" {
		dir = DefaultDir
	}
	return &Cache{Dir: dir}
}

// Cache file name for the dimension and precision (bits)
func (c *Cache) FileName(dim int, prec uint) string {
	return filepath.Join(c.Dir, fmt.Sprintf("dim%d-prec%d.yaml", dim, prec))
}

// Ensures that terms 1..terms are stored for the dimension and precision.
// Only missing terms are computed; the file is not touched when nothing is missing.
func (c *Cache) Precompute(dim int, prec uint, terms int, compute TermFunc) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	fileName := c.FileName(dim, prec)
	table, err := c.load(dim, prec)
	if errors.Is(err, ErrNotPrecomputed) {
		if c.Verbose {
			logger.Info().Msgf("Creating: %s", fileName)
		}
		table = make(Table, terms)
	} else if err != nil {
		return err
	}

	if missing(table, terms) == 0 {
		return nil
	}

	for k := 1; k <= terms; k++ {
		if _, ok := table[k]; ok {
			continue
		}
		table[k] = compute(k)
		if c.Verbose && k%1000 == 0 {
			logger.Debug().Int("dim", dim).Int("k", k).Send()
		}
	}

	return c.save(dim, prec, table)
}

// Retrieves precomputed terms; all of 1..terms must be present.
func (c *Cache) Retrieve(dim int, prec uint, terms int) (Table, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	table, err := c.load(dim, prec)
	if err != nil {
		return nil, err
	}

	if cnt := missing(table, terms); cnt > 0 {
		return nil, fmt.Errorf("%w %d and %d (%d absent)", ErrMissingTerms, dim, prec, cnt)
	}
	return table, nil
}

func missing(table Table, terms int) int {
	cnt := 0
	for k := 1; k <= terms; k++ {
		if _, ok := table[k]; !ok {
			cnt++
		}
	}
	return cnt
}

func (c *Cache) load(dim int, prec uint) (Table, error) {
	fileName := c.FileName(dim, prec)
	raw, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w %d and %d", ErrNotPrecomputed, dim, prec)
	} else if err != nil {
		return nil, err
	}

	var rec record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupted, fileName, err)
	}
	if rec.Dim != dim || rec.Precision != prec {
		return nil, fmt.Errorf("%w %s: holds dimension %d and precision %d", ErrCorrupted, fileName, rec.Dim, rec.Precision)
	}

	table := make(Table, len(rec.Terms))
	for _, t := range rec.Terms {
		re, okRe := new(decimal.Big).SetString(t.Re)
		im, okIm := new(decimal.Big).SetString(t.Im)
		if !okRe || !okIm || !finite(re) || !finite(im) {
			return nil, fmt.Errorf("%w %s: bad value for k=%d", ErrCorrupted, fileName, t.K)
		}
		table[t.K] = bigc.Complex{Re: re, Im: im}
	}
	return table, nil
}

// SetString yields NaN rather than failing on malformed text
func finite(x *decimal.Big) bool {
	return !x.IsNaN(0) && !x.IsInf(0)
}

// Writes into a temporary file first, so readers never see partial content
func (c *Cache) save(dim int, prec uint, table Table) error {
	ks := make([]int, 0, len(table))
	for k := range table {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	rec := record{Dim: dim, Precision: prec, Terms: make([]termEntry, 0, len(ks))}
	for _, k := range ks {
		rec.Terms = append(rec.Terms, termEntry{K: k, Re: table[k].Re.String(), Im: table[k].Im.String()})
	}

	raw, err := yaml.Marshal(&rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.Dir, ".precomp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err = tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), c.FileName(dim, prec))
}
