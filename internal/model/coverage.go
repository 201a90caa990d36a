package model

// Gap is a half-open uncovered byte interval [Start, End).
type Gap struct {
	Start int64
	End   int64
}

func (g Gap) Length() int64 { return g.End - g.Start }

// CoverageReport is the CoverageAnalyzer's single output value (spec.md §3).
type CoverageReport struct {
	FileSize           int64
	BytesCovered       int64
	BytesUncovered     int64
	Gaps               []Gap
	LargestGap         Gap
	HasGap             bool // false when the file has zero gaps
	CoveragePercentage float64
	RecordCount        int
}
