// Package coverage implements the CoverageAnalyzer: ParseResult + file
// size -> mapped/unmapped byte partitioning (spec.md §4.6).
package coverage

import (
	"sort"

	"github.com/tylerk07/hexgrammar/internal/model"
)

// Analyze merges every error-free leaf interval into a covered set, then
// derives gaps as its complement within [0, fileSize).
func Analyze(result *model.ParseResult, fileSize int64) *model.CoverageReport {
	var intervals []model.Gap
	for _, r := range result.Records {
		if r.Error != nil {
			continue
		}
		for _, leaf := range r.Leaves() {
			if leaf.Error != nil || leaf.Length <= 0 {
				continue
			}
			intervals = append(intervals, model.Gap{Start: leaf.Offset, End: leaf.Offset + leaf.Length})
		}
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start < intervals[j].Start })

	covered := mergeIntervals(intervals)

	var gaps []model.Gap
	cur := int64(0)
	for _, c := range covered {
		if c.Start > cur {
			gaps = append(gaps, model.Gap{Start: cur, End: c.Start})
		}
		if c.End > cur {
			cur = c.End
		}
	}
	if cur < fileSize {
		gaps = append(gaps, model.Gap{Start: cur, End: fileSize})
	}

	var bytesCovered int64
	for _, c := range covered {
		bytesCovered += c.Length()
	}
	bytesUncovered := fileSize - bytesCovered

	report := &model.CoverageReport{
		FileSize:       fileSize,
		BytesCovered:   bytesCovered,
		BytesUncovered: bytesUncovered,
		Gaps:           gaps,
		RecordCount:    len(result.Records),
	}
	if fileSize > 0 {
		report.CoveragePercentage = 100 * float64(bytesCovered) / float64(fileSize)
	}
	if len(gaps) > 0 {
		largest := gaps[0]
		for _, g := range gaps[1:] {
			if g.Length() > largest.Length() {
				largest = g
			}
		}
		report.LargestGap = largest
		report.HasGap = true
	}
	return report
}

// mergeIntervals merges overlapping and adjacent (zero-gap) intervals.
// intervals must already be sorted by Start.
func mergeIntervals(intervals []model.Gap) []model.Gap {
	if len(intervals) == 0 {
		return nil
	}
	merged := []model.Gap{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
