package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level so a duel's
// randomness can be audited from the logs.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and result.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw",
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("random draw",
		zap.String("kind", "float64"),
		zap.Float64("value", v),
	)
	return v
}
