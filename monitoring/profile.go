package monitoring

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/google/pprof/profile"
)

// A CPUProfiler records a CPU profile of the process into a file and keeps a
// copy for summarizing.
type CPUProfiler struct {
	file *os.File
	buf  *bytes.Buffer
}

// StartCPUProfile starts profiling the process. The profile is written to
// path.
func StartCPUProfile(path string) (*CPUProfiler, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile: %w", err)
	}

	p := &CPUProfiler{
		file: f,
		buf:  bytes.NewBuffer(nil),
	}

	err = pprof.StartCPUProfile(io.MultiWriter(f, p.buf))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}

	return p, nil
}

// FunctionSample is the CPU time spent in a function, excluding callees.
type FunctionSample struct {
	Function string
	CPUTime  time.Duration
}

// ProfileSummary is a short digest of a CPU profile.
type ProfileSummary struct {
	Duration     time.Duration
	TotalCPUTime time.Duration
	Top          []FunctionSample
}

// Stop ends profiling, closes the file and summarizes the profile.
func (p *CPUProfiler) Stop(topN int) (ProfileSummary, error) {
	pprof.StopCPUProfile()

	err := p.file.Close()
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("close cpu profile: %w", err)
	}

	prof, err := profile.ParseData(p.buf.Bytes())
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("parse cpu profile: %w", err)
	}

	return Summarize(prof, topN), nil
}

// Summarize adds up the CPU time of every sample by the function at the top
// of its stack and keeps the topN most expensive functions.
func Summarize(prof *profile.Profile, topN int) ProfileSummary {
	summary := ProfileSummary{
		Duration: time.Duration(prof.DurationNanos),
	}

	valueIndex := cpuValueIndex(prof)
	if valueIndex < 0 {
		return summary
	}

	flat := make(map[string]int64)
	for _, s := range prof.Sample {
		v := s.Value[valueIndex]
		summary.TotalCPUTime += time.Duration(v)

		flat[leafFunction(s)] += v
	}

	for name, v := range flat {
		summary.Top = append(summary.Top, FunctionSample{
			Function: name,
			CPUTime:  time.Duration(v),
		})
	}

	sort.Slice(summary.Top, func(i, j int) bool {
		if summary.Top[i].CPUTime != summary.Top[j].CPUTime {
			return summary.Top[i].CPUTime > summary.Top[j].CPUTime
		}

		return summary.Top[i].Function < summary.Top[j].Function
	})

	if len(summary.Top) > topN {
		summary.Top = summary.Top[:topN]
	}

	return summary
}

func cpuValueIndex(prof *profile.Profile) int {
	for i, st := range prof.SampleType {
		if st.Type == "cpu" && st.Unit == "nanoseconds" {
			return i
		}
	}

	return -1
}

func leafFunction(s *profile.Sample) string {
	if len(s.Location) == 0 || len(s.Location[0].Line) == 0 {
		return "unknown"
	}

	fn := s.Location[0].Line[0].Function
	if fn == nil {
		return "unknown"
	}

	return fn.Name
}

// Log writes the summary to the logger.
func (s ProfileSummary) Log(logger *log.Logger) {
	logger.Printf("cpu profile: %s of cpu time over %s",
		s.TotalCPUTime, s.Duration.Round(time.Millisecond))

	for _, f := range s.Top {
		logger.Printf("  %10s  %s", f.CPUTime, f.Function)
	}
}
