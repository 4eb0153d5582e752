// Package monitor reports resource usage of the running process.
//
// Precomputing the series terms for large dimensions takes minutes and a fair
// amount of memory; commands print these figures after the work is done.
package monitor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

type ParamType int
type ParamList []ParamType

const (
	// CPU time (user + kernel) in milliseconds
	Cpu ParamType = iota
	// Resident memory in kilobytes
	Mem
	// Number of OS threads
	Threads

	paramFirst = Cpu
	paramLast  = Threads
)

var (
	convertMap = map[string]ParamType{
		"Cpu":     Cpu,
		"Mem":     Mem,
		"Threads": Threads,
	}

	nameMap = map[ParamType]string{
		Cpu:     "CPU (ms)",
		Mem:     "Mem (KB)",
		Threads: "Threads",
	}

	// All parameters in display order
	AllParams = ParamList{Cpu, Mem, Threads}

	NO_TIMESTAT = &cpu.TimesStat{}
	NO_MEMSTAT  = &process.MemoryInfoStat{}
)

const (
	colWidth = 11
)

// Only necessary methods of gopsutil `process.Process`
type IQProcess interface {
	Times() (*cpu.TimesStat, error)
	MemoryInfo() (*process.MemoryInfoStat, error)
	NumThreads() (int32, error)
}

// Function substitution for unit tests
var (
	newProcess = func(pid int32) (IQProcess, error) { return process.NewProcess(pid) }
)

// Handle of the current process
func Self() (IQProcess, error) {
	return newProcess(int32(os.Getpid()))
}

// Parses comma separated parameter names; unknown names are skipped
func ParseParamList(flagValues string) ParamList {
	paramList := ParamList{}
	for _, val := range strings.Split(flagValues, ",") {
		if param, ok := convertMap[strings.TrimSpace(val)]; ok {
			paramList = append(paramList, param)
		}
	}
	return paramList
}

// Current values of the parameters; failed queries yield zeros
func Measure(proc IQProcess, paramList ParamList) []float64 {
	values := make([]float64, len(paramList))
	for i, p := range paramList {
		values[i] = getValue(proc, p)
	}
	return values
}

func getValue(proc IQProcess, p ParamType) float64 {
	switch p {
	case Cpu:
		ts, err := proc.Times()
		if err != nil {
			ts = NO_TIMESTAT
		}
		return (ts.User + ts.System) * 1000
	case Mem:
		memInfo, err := proc.MemoryInfo()
		if err != nil {
			memInfo = NO_MEMSTAT
		}
		return float64(memInfo.RSS) / 1024
	case Threads:
		cnt, err := proc.NumThreads()
		if err != nil {
			return 0
		}
		return float64(cnt)
	default:
		panic(fmt.Errorf("unknown parameter type: %v", p))
	}
}

// Prints headers for monitored parameters
//
//nolint:errcheck
func PrintHeader(sink io.Writer, paramList ParamList) {
	fmt.Fprint(sink, "Time                   ")
	for _, p := range paramList {
		fmt.Fprintf(sink, " %*s", colWidth, nameMap[p])
	}
	fmt.Fprintln(sink)
}

// Prints values of monitored parameters
//
//nolint:errcheck
func PrintValues(sink io.Writer, values []float64) {
	fmt.Fprint(sink, time.Now().Format("2006-01-02 15:04:05.000"))
	for _, v := range values {
		fmt.Fprintf(sink, " %*.2f", colWidth, v)
	}
	fmt.Fprintln(sink)
}
