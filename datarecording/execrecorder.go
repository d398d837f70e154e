package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

// Struct execInfo is feed to DataRecorder
type execInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records how the simulator was run: the command, the
// working directory, the start and end time, and any extra properties.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

// NewExecRecorder creates the exec_info table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(execTableName, execInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start logs the current execution.
func (e *ExecRecorder) Start() {
	e.Set("Start Time", now())
	e.Set("Command", strings.Join(os.Args, " "))

	if cwd, err := os.Getwd(); err == nil {
		e.Set("Working Directory", cwd)
	}
}

// Set records an extra property of the execution.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

// End writes the properties along with the exit time.
func (e *ExecRecorder) End() {
	e.Set("End Time", now())

	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
