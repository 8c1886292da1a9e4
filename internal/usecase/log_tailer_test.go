package usecase

import (
	"fmt"
	"testing"

	"EngineMirror/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offset(v uint64) *uint64 { return &v }

func seqs(lines []models.LogLine) []uint64 {
	out := make([]uint64, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Sequence)
	}
	return out
}

func texts(lines []models.LogLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestClassifySeverity(t *testing.T) {
	tests := map[string]models.Severity{
		"CRITICAL: disk full":                 models.SeverityError,
		"INFO: poll ok":                       models.SeverityInfo,
		"Traceback (most recent call last):":  models.SeverityError,
		"ValueError exception raised":         models.SeverityError,
		"Log okuma hatası: permission denied": models.SeverityError,
		"2024-05-01 WARNING low liquidity":    models.SeverityWarn,
		"warn: retrying":                      models.SeverityWarn,
		"engine started":                      models.SeverityInfo,
		"":                                    models.SeverityInfo,
		"INFO: previous ERROR cleared":        models.SeverityError,
		"Log dosyası henüz oluşturulmadı.":    models.SeverityInfo,
	}
	for line, want := range tests {
		assert.Equal(t, want, ClassifySeverity(line), line)
	}
}

func TestMergeWithOffsetDropsSeen(t *testing.T) {
	tl := NewLogTailer(10)

	first := tl.Merge(nil, models.TerminalPayload{Lines: []string{"l1", "l2", "l3"}, Offset: offset(1)})
	assert.Equal(t, []uint64{1, 2, 3}, seqs(first))

	second := tl.Merge(first, models.TerminalPayload{Lines: []string{"l2", "l3", "l4"}, Offset: offset(2)})
	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs(second))
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, texts(second))

	assert.Len(t, first, 3, "retained slice untouched")
}

func TestMergeAlignsByOverlap(t *testing.T) {
	tl := NewLogTailer(10)

	first := tl.Merge(nil, models.TerminalPayload{Lines: []string{"1", "2", "3"}})
	assert.Equal(t, []uint64{1, 2, 3}, seqs(first))

	second := tl.Merge(first, models.TerminalPayload{Lines: []string{"2", "3", "4"}})
	assert.Equal(t, []string{"1", "2", "3", "4"}, texts(second))
	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs(second))

	same := tl.Merge(second, models.TerminalPayload{Lines: []string{"2", "3", "4"}})
	assert.Equal(t, seqs(second), seqs(same))
}

func TestMergeOverlapWithRepeatedText(t *testing.T) {
	tl := NewLogTailer(10)

	first := tl.Merge(nil, models.TerminalPayload{Lines: []string{"ok", "ok", "ok"}})
	second := tl.Merge(first, models.TerminalPayload{Lines: []string{"ok", "ok", "ok", "ok"}})
	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs(second))
}

func numbered(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("line %d", i))
	}
	return out
}

func TestMergeCapSmallerThanWindow(t *testing.T) {
	tl := NewLogTailer(10)

	first := tl.Merge(nil, models.TerminalPayload{Lines: numbered(1, 50)})
	require.Len(t, first, 10)
	assert.Equal(t, uint64(50), first[9].Sequence)

	same := tl.Merge(first, models.TerminalPayload{Lines: numbered(1, 50)})
	assert.Equal(t, seqs(first), seqs(same), "unchanged window is not re-appended")
	assert.Equal(t, texts(first), texts(same))

	slid := tl.Merge(same, models.TerminalPayload{Lines: numbered(3, 52)})
	require.Len(t, slid, 10)
	assert.Equal(t, []uint64{43, 44, 45, 46, 47, 48, 49, 50, 51, 52}, seqs(slid))
	assert.Equal(t, numbered(43, 52), texts(slid))
}

func TestMergeWithoutOverlapAppendsAll(t *testing.T) {
	tl := NewLogTailer(10)

	first := tl.Merge(nil, models.TerminalPayload{Lines: []string{"a", "b"}})
	second := tl.Merge(first, models.TerminalPayload{Lines: []string{"x", "y"}})
	assert.Equal(t, []string{"a", "b", "x", "y"}, texts(second))
	assert.Equal(t, []uint64{1, 2, 3, 4}, seqs(second))
}

func TestMergeCapsRetained(t *testing.T) {
	tl := NewLogTailer(5)

	var retained []models.LogLine
	for batch := 0; batch < 4; batch++ {
		lines := make([]string, 3)
		for i := range lines {
			lines[i] = fmt.Sprintf("b%d-%d", batch, i)
		}
		retained = tl.Merge(retained, models.TerminalPayload{Lines: lines})
	}
	require.Len(t, retained, 5)
	assert.Equal(t, []uint64{8, 9, 10, 11, 12}, seqs(retained))

	big := make([]string, 8)
	for i := range big {
		big[i] = fmt.Sprintf("big-%d", i)
	}
	out := tl.Merge(retained, models.TerminalPayload{Lines: big, Offset: offset(100)})
	assert.Equal(t, []uint64{103, 104, 105, 106, 107}, seqs(out))
}

func TestMergeNothingNewReturnsRetained(t *testing.T) {
	tl := NewLogTailer(10)
	first := tl.Merge(nil, models.TerminalPayload{Lines: []string{"a"}, Offset: offset(5)})
	again := tl.Merge(first, models.TerminalPayload{Lines: []string{"a"}, Offset: offset(5)})
	assert.Equal(t, first, again)

	empty := tl.Merge(first, models.TerminalPayload{Lines: nil})
	assert.Equal(t, first, empty)
}
