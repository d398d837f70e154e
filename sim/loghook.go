package sim

import (
	"log"
)

// A LogHook is a Hook that writes what it observes to a log.
type LogHook interface {
	Hook
}

// LogHookBase holds the logger that a LogHook writes to.
type LogHookBase struct {
	*log.Logger
}
