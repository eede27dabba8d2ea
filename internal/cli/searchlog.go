package cli

import (
	"time"

	"github.com/charmbracelet/log"
)

// searchLogger turns per-generation optimizer callbacks into readable log
// lines: the initial score, every improvement, and a heartbeat every 10
// seconds while the search keeps running without finding anything better.
//
// Not safe for concurrent use; install it only when optimizing one family
// at a time.
type searchLogger struct {
	logger   *log.Logger
	lastBest float64
	seen     bool
	start    time.Time
	lastLog  time.Time
}

func newSearchLogger(l *log.Logger) *searchLogger {
	return &searchLogger{logger: l, start: time.Now()}
}

// onProgress is installed as the runner's Progress callback.
func (s *searchLogger) onProgress(_ string, generation int, best float64) {
	switch {
	case !s.seen:
		s.logger.Infof("Initial: score %.2f (generation %d)", best, generation)
		s.seen = true
		s.lastLog = time.Now()
	case best < s.lastBest:
		s.logger.Infof("Improved: score %.2f (↓%.2f, generation %d)", best, s.lastBest-best, generation)
		s.lastLog = time.Now()
	default:
		if time.Since(s.lastLog) >= 10*time.Second {
			elapsed := time.Since(s.start).Truncate(time.Second)
			s.logger.Infof("Searching... %v elapsed, score %.2f (generation %d)", elapsed, best, generation)
			s.lastLog = time.Now()
		}
	}
	s.lastBest = best
}
