package coverage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerk07/hexgrammar/internal/binparse"
	"github.com/tylerk07/hexgrammar/internal/coverage"
	"github.com/tylerk07/hexgrammar/internal/grammar"
	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

func parseFile(t *testing.T, grammarText string, data []byte, opts binparse.Options) (*model.ParseResult, int64) {
	t.Helper()
	lintResult := grammar.Lint(grammarText)
	require.True(t, lintResult.Success, "errors: %v", lintResult.Errors)

	path := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	rdr, rerr := reader.Open(path, 0, 0)
	require.Nil(t, rerr)
	t.Cleanup(func() { rdr.Close() })

	return binparse.Parse(lintResult.Grammar, rdr, opts), rdr.Size()
}

const fixedRecordGrammar = `
format: record_stream
endian: little
types:
  Record:
    type: struct
    fields:
      - name: a
        type: u32
      - name: b
        type: u16
`

// spec §8 seed scenario 6: coverage gap with max_records=1.
func TestCoverageGapSeedScenario6(t *testing.T) {
	t.Parallel()
	data := make([]byte, 16)
	copy(data, []byte{1, 0, 0, 0, 2, 0})

	result, size := parseFile(t, fixedRecordGrammar, data, binparse.Options{MaxRecords: 1})
	report := coverage.Analyze(result, size)

	assert.InDelta(t, 37.5, report.CoveragePercentage, 0.0001)
	require.True(t, report.HasGap)
	assert.Equal(t, gapAt(6, 16), report.LargestGap)
	require.Len(t, report.Gaps, 1)
	assert.Equal(t, gapAt(6, 16), report.Gaps[0])
	assert.Equal(t, int64(6), report.BytesCovered)
	assert.Equal(t, int64(10), report.BytesUncovered)
}

func gapAt(start, end int64) model.Gap {
	return model.Gap{Start: start, End: end}
}

func TestCoverageFullFile(t *testing.T) {
	t.Parallel()
	data := []byte{1, 0, 0, 0, 2, 0}
	result, size := parseFile(t, fixedRecordGrammar, data, binparse.Options{})
	report := coverage.Analyze(result, size)

	assert.InDelta(t, 100.0, report.CoveragePercentage, 0.0001)
	assert.False(t, report.HasGap)
	assert.Empty(t, report.Gaps)
	assert.Equal(t, int64(6), report.BytesCovered)
	assert.Equal(t, int64(0), report.BytesUncovered)
}

func TestCoverageInvariantBytesCoveredPlusGapsEqualsFileSize(t *testing.T) {
	t.Parallel()
	data := make([]byte, 20)
	copy(data, []byte{1, 0, 0, 0, 2, 0})
	result, size := parseFile(t, fixedRecordGrammar, data, binparse.Options{})
	report := coverage.Analyze(result, size)

	var gapTotal int64
	for _, g := range report.Gaps {
		gapTotal += g.Length()
	}
	assert.Equal(t, size, report.BytesCovered+gapTotal)
	assert.Equal(t, size, report.BytesCovered+report.BytesUncovered)
}

func TestCoverageEmptyFile(t *testing.T) {
	t.Parallel()
	result, size := parseFile(t, fixedRecordGrammar, []byte{}, binparse.Options{})
	report := coverage.Analyze(result, size)

	assert.Equal(t, int64(0), report.FileSize)
	assert.Equal(t, float64(0), report.CoveragePercentage)
	assert.False(t, report.HasGap)
}
