package monitor

import "log"

// Reporter receives one formatted line per emitted measurement.
type Reporter interface {
	Report(line string)
}

// LogReporter writes report lines through the standard logger.
type LogReporter struct{}

var _ Reporter = LogReporter{}

// Report implements Reporter.
func (LogReporter) Report(line string) {
	log.Print(line)
}
