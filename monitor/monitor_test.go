package monitor

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/aknopov/ballcube/mocker"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
)

var (
	errTest = errors.New("test error")
)

type fakeProcess struct {
	times   *cpu.TimesStat
	mem     *process.MemoryInfoStat
	threads int32
	err     error
}

func (fp *fakeProcess) Times() (*cpu.TimesStat, error)               { return fp.times, fp.err }
func (fp *fakeProcess) MemoryInfo() (*process.MemoryInfoStat, error) { return fp.mem, fp.err }
func (fp *fakeProcess) NumThreads() (int32, error)                   { return fp.threads, fp.err }

func TestParamTypeCoverage(t *testing.T) {
	assertT := assert.New(t)

	allParams := make([]ParamType, 0)
	for p := paramLast; p >= paramFirst; p-- {
		allParams = append(allParams, p)
	}

	namedParams := make([]ParamType, 0)
	for p := range nameMap {
		namedParams = append(namedParams, p)
	}
	assertT.ElementsMatch(allParams, namedParams)

	convertParams := make([]ParamType, 0)
	for _, p := range convertMap {
		convertParams = append(convertParams, p)
	}
	assertT.ElementsMatch(allParams, convertParams)
	assertT.ElementsMatch(allParams, AllParams)
}

func TestParseParamList(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(ParamList{Cpu, Mem}, ParseParamList("Cpu,Mem"))
	assertT.Equal(ParamList{Threads, Cpu}, ParseParamList("Threads, Cpu"))
	assertT.Equal(ParamList{Mem}, ParseParamList("Foo,Mem"))
	assertT.Empty(ParseParamList(""))
}

func TestMeasure(t *testing.T) {
	assertT := assert.New(t)

	proc := &fakeProcess{
		times:   &cpu.TimesStat{User: 1.5, System: 0.25},
		mem:     &process.MemoryInfoStat{RSS: 2048 * 1024},
		threads: 13,
	}

	assertT.Equal([]float64{1750, 2048, 13}, Measure(proc, AllParams))
	assertT.Panics(func() { Measure(proc, ParamList{paramLast + 1}) })
}

func TestMeasureRecovery(t *testing.T) {
	assertT := assert.New(t)

	proc := &fakeProcess{err: errTest}

	assertT.Equal([]float64{0, 0, 0}, Measure(proc, AllParams))
}

func TestSelf(t *testing.T) {
	assertT := assert.New(t)

	var askedPid int32
	defer mocker.ReplaceItem(&newProcess, func(pid int32) (IQProcess, error) {
		askedPid = pid
		return &fakeProcess{}, nil
	})()

	proc, err := Self()
	assertT.NoError(err)
	assertT.NotNil(proc)
	assertT.Positive(askedPid)
}

func TestPrintHeader(t *testing.T) {
	assertT := assert.New(t)

	var sink bytes.Buffer
	PrintHeader(&sink, ParamList{Cpu, Threads})

	assertT.Equal("Time                       CPU (ms)     Threads\n", sink.String())
}

func TestPrintValues(t *testing.T) {
	assertT := assert.New(t)

	var sink bytes.Buffer
	PrintValues(&sink, []float64{1.0, 13.0})

	output := sink.String()
	tsRex := regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} .*`)
	assertT.True(tsRex.MatchString(output))
	assertT.True(strings.HasSuffix(output, "        1.00       13.00\n"))
}
