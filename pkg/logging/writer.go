package logging

import (
	"bytes"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerWriter struct {
	logger *zap.Logger
	level  zapcore.Level
}

// NewLoggerWriter returns an io.Writer that logs each written line at the
// given level. Used to stream subprocess and engine output through zap.
func NewLoggerWriter(logger *zap.Logger, level zapcore.Level) io.Writer {
	return &loggerWriter{logger: logger, level: level}
}

func (w *loggerWriter) Write(p []byte) (n int, err error) {
	var lines []string
	if bytes.Contains(p, []byte{'\n'}) {
		lineBytes := bytes.Split(p, []byte{'\n'})
		lines = make([]string, 0, len(lineBytes))
		for _, line := range lineBytes {
			if len(line) != 0 {
				lines = append(lines, string(line))
			}
		}
	} else {
		lines = []string{string(p)}
	}
	for _, line := range lines {
		if ce := w.logger.Check(w.level, line); ce != nil {
			ce.Write()
		}
	}
	return len(p), nil
}
