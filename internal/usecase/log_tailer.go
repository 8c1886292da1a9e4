package usecase

import (
	"strings"

	"EngineMirror/internal/domain/models"
)

const DefaultMaxLogLines = 500

// LogTailer turns the engine's sliding /api/terminal window into an
// ordered, deduplicated and capped sequence of log lines.
type LogTailer struct {
	maxLines int
}

func NewLogTailer(maxLines int) *LogTailer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLogLines
	}
	return &LogTailer{maxLines: maxLines}
}

func (t *LogTailer) MaxLines() int { return t.maxLines }

var (
	errorMarkers = []string{"ERROR", "CRITICAL", "EXCEPTION", "TRACEBACK", "HATA"}
	warnMarkers  = []string{"WARNING", "WARN"}
)

// ClassifySeverity derives a severity from the line text, case-insensitively.
// Unrecognised lines are INFO.
func ClassifySeverity(line string) models.Severity {
	up := strings.ToUpper(line)
	for _, m := range errorMarkers {
		if strings.Contains(up, m) {
			return models.SeverityError
		}
	}
	for _, m := range warnMarkers {
		if strings.Contains(up, m) {
			return models.SeverityWarn
		}
	}
	return models.SeverityInfo
}

// Merge returns a new slice holding retained plus the unseen lines of p,
// trimmed to the cap. retained is never modified.
//
// With an offset, line i has sequence offset+i. Without one, the window is
// aligned to the latest point where the retained tail ends inside it and
// only the lines after that point continue from the highest sequence.
// Either way a line whose sequence is not above the highest retained one
// is dropped.
func (t *LogTailer) Merge(retained []models.LogLine, p models.TerminalPayload) []models.LogLine {
	var (
		highest uint64
		hasAny  = len(retained) > 0
	)
	if hasAny {
		highest = retained[len(retained)-1].Sequence
	}

	fresh := make([]models.LogLine, 0, len(p.Lines))
	if p.Offset != nil {
		for i, text := range p.Lines {
			seq := *p.Offset + uint64(i)
			if hasAny && seq <= highest {
				continue
			}
			fresh = append(fresh, models.LogLine{Text: text, Severity: ClassifySeverity(text), Sequence: seq})
		}
	} else {
		skip := overlap(retained, p.Lines)
		next := highest + 1
		for _, text := range p.Lines[skip:] {
			fresh = append(fresh, models.LogLine{Text: text, Severity: ClassifySeverity(text), Sequence: next})
			next++
		}
	}

	if len(fresh) == 0 {
		return retained
	}

	total := len(retained) + len(fresh)
	start := 0
	if total > t.maxLines {
		start = total - t.maxLines
	}

	out := make([]models.LogLine, 0, total-start)
	if start < len(retained) {
		out = append(out, retained[start:]...)
		out = append(out, fresh...)
	} else {
		out = append(out, fresh[start-len(retained):]...)
	}
	return out
}

// overlap returns how many leading window lines are already retained. A
// candidate e means the retained tail ends at window[e-1]; the tail must
// match in full, or as much of it as fits before e.
//
// Candidates with e <= len(retained) are tried first, largest first: that
// is the usual case of a window no longer than the retained tail. Only when
// none fits is the retained tail searched for inside a longer window, again
// taking the latest match, so a cap below the window size still dedups.
func overlap(retained []models.LogLine, window []string) int {
	r := len(retained)
	if r == 0 {
		return 0
	}
	for e := min(len(window), r); e > 0; e-- {
		if tailEndsAt(retained, window, e) {
			return e
		}
	}
	for e := len(window); e > r; e-- {
		if tailEndsAt(retained, window, e) {
			return e
		}
	}
	return 0
}

func tailEndsAt(retained []models.LogLine, window []string, e int) bool {
	k := min(e, len(retained))
	tail := retained[len(retained)-k:]
	head := window[e-k : e]
	for i := 0; i < k; i++ {
		if tail[i].Text != head[i] {
			return false
		}
	}
	return true
}
