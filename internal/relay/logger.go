package relay

import (
	"fmt"
	"log"
)

// Logger is a minimal interface any *log.Logger satisfies, decorated with
// a per-session/per-channel prefix by prefixLogger.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
}

// NewLogger wraps the standard library logger so the composition root
// doesn't need to depend on this package's Logger shape directly.
func NewLogger(l *log.Logger) Logger {
	return l
}

type prefixLogger struct {
	logger Logger
	prefix string
}

func newPrefixLogger(logger Logger, prefix string) *prefixLogger {
	return &prefixLogger{logger: logger, prefix: prefix}
}

func (log *prefixLogger) Print(v ...interface{}) {
	v = append([]interface{}{log.prefix}, v...)
	log.logger.Print(v...)
}

func (log *prefixLogger) Printf(format string, v ...interface{}) {
	log.logger.Print(log.prefix + fmt.Sprintf(format, v...))
}
