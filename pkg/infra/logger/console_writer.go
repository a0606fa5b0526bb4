package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConsoleHook mirrors entries to the console, warnings and above to errOut.
type ConsoleHook struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func NewConsoleHook(out, errOut io.Writer) *ConsoleHook {
	return &ConsoleHook{out: out, errOut: errOut}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	w := h.out
	if entry.Level <= logrus.WarnLevel {
		w = h.errOut
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = w.Write(line)
	return err
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
