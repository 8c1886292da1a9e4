package models

type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// ParseSeverity maps a query value to a Severity; ok is false for
// anything unknown.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarn, SeverityError:
		return Severity(s), true
	}
	return "", false
}

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarn:
		return 1
	}
	return 0
}

// AtLeast reports whether s is as severe as floor.
func (s Severity) AtLeast(floor Severity) bool {
	return s.rank() >= floor.rank()
}

// LogLine is one engine log line with a monotonically increasing Sequence.
type LogLine struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
	Sequence uint64   `json:"seq"`
}
