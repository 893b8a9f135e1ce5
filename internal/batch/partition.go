package batch

// Range is a half-open index range [Start, End) into the URL list.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits n items into consecutive ranges of size items, the last
// one possibly shorter. It returns nil for n <= 0 or size <= 0.
func Partition(n, size int) []Range {
	if n <= 0 || size <= 0 {
		return nil
	}
	ranges := make([]Range, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		ranges = append(ranges, Range{Start: start, End: min(start+size, n)})
	}
	return ranges
}
