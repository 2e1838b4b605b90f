package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the diagnostic logger. Diagnostics go to out (stderr in
// production) so stdout only ever carries the report.
func NewLogger(level string, out io.Writer) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return logger, nil
}
