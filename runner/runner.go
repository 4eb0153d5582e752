// Package runner executes tasks concurrently and collects timing statistics.
package runner

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/ericlagergren/decimal"
)

// Statistics for running one task
type Stats struct {
	Count     int             `json:"count" yaml:"count"`
	TotalTime time.Duration   `json:"sum_time" yaml:"sum_time"`
	AvgTime   time.Duration   `json:"avg_time" yaml:"avg_time"`
	MinTime   time.Duration   `json:"min_time" yaml:"min_time"`
	MaxTime   time.Duration   `json:"max_time" yaml:"max_time"`
	MedTime   time.Duration   `json:"med_time" yaml:"med_time"`
	StdDev    time.Duration   `json:"stdev_time" yaml:"stdev_time"`
	Fails     int             `json:"fails" yaml:"fails"`
	Errors    []error         `json:"-" yaml:"-"`
	Values    []time.Duration `json:"times" yaml:"times"`
}

// Task to run; an error counts as a failure
type Task func() error

type taskFixture struct {
	sema      chan struct{}   // concurrency throttle - shared
	waitGroup *sync.WaitGroup // completion flag - shared
	lock      sync.Mutex      // `runtimes` and `errs` guard
	task      Task
	runtimes  []time.Duration
	errs      []error
}

// Runs tasks concurrently.
//
//   - tasks - tasks to run, round robin
//
//   - totalRuns - total number of runs (>= len(tasks))
//
//   - concurrent - maximal number of simultaneously running tasks
//
//     returns time statistics per task
func Run(tasks []Task, totalRuns int, concurrent int) []Stats {
	if len(tasks) == 0 {
		return []Stats{}
	}
	concurrent = max(concurrent, 1)

	waitGroup := new(sync.WaitGroup)
	sema := make(chan struct{}, concurrent)
	fixtures := make([]*taskFixture, len(tasks))
	for i, task := range tasks {
		fixtures[i] = &taskFixture{sema: sema, waitGroup: waitGroup, task: task}
	}

	for i := range totalRuns {
		waitGroup.Add(1)
		go fixtures[i%len(tasks)].runOnce()
	}

	waitGroup.Wait()

	stats := make([]Stats, 0, len(fixtures))
	for _, fixture := range fixtures {
		stats = append(stats, summarize(fixture.runtimes, fixture.errs))
	}
	return stats
}

// Runs every task once
func RunEach(tasks []Task, concurrent int) []Stats {
	return Run(tasks, len(tasks), concurrent)
}

func (fixture *taskFixture) runOnce() {
	fixture.sema <- struct{}{}
	defer func() { <-fixture.sema }()
	defer fixture.waitGroup.Done()

	start := time.Now()
	err := fixture.task()
	execTime := time.Since(start)

	fixture.lock.Lock()
	defer fixture.lock.Unlock()
	fixture.runtimes = append(fixture.runtimes, execTime)
	if err != nil {
		fixture.errs = append(fixture.errs, err)
	}
}

func summarize(runtimes []time.Duration, errs []error) Stats {
	stats := Stats{Count: len(runtimes), Fails: len(errs), Errors: errs, Values: runtimes}
	if len(runtimes) == 0 {
		return stats
	}

	sorted := slices.Clone(runtimes)
	slices.Sort(sorted)

	precCtx := decimal.Context128
	sum := new(decimal.Big)
	sum2 := new(decimal.Big)
	bigT := new(decimal.Big)
	for _, t := range sorted {
		bigT.SetUint64(uint64(t))
		precCtx.Add(sum, sum, bigT)
		precCtx.Add(sum2, sum2, precCtx.Mul(bigT, bigT, bigT))
	}

	count := float64(len(sorted))
	total := big2float(sum)
	stats.TotalTime = time.Duration(total)
	stats.AvgTime = time.Duration(total / count)
	stats.MinTime = sorted[0]
	stats.MedTime = sorted[len(sorted)/2]
	stats.MaxTime = sorted[len(sorted)-1]
	if len(sorted) > 1 {
		variance := big2float(sum2)/(count-1) - total*total/count/(count-1)
		stats.StdDev = time.Duration(math.Sqrt(max(variance, 0)))
	}

	return stats
}

func big2float(val *decimal.Big) float64 {
	conv, _ := val.Float64()
	return conv
}
