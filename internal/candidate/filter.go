package candidate

import "encoding/json"

// EventLength estimates the length of the event a candidate describes.
// It prefers an explicit "length", then the span |end - start|, then the
// longest of the "ref"/"alt" allele sequences. Unknown lengths are 0.
func EventLength(obj map[string]any) int {
	if n, ok := intField(obj, "length"); ok {
		return abs(n)
	}
	start, okStart := intField(obj, "start")
	end, okEnd := intField(obj, "end")
	if okStart && okEnd {
		return abs(end - start)
	}
	longest := 0
	for _, key := range []string{"ref", "alt"} {
		if s, ok := obj[key].(string); ok && len(s) > longest {
			longest = len(s)
		}
	}
	return longest
}

// Filter applies the min-length filter and then the max-events cap. Order is
// preserved; the kept records are a prefix of the length-filtered sequence.
// maxEvents == 0 means no cap. It returns the kept records and how many were
// dropped.
func Filter(records []Record, minLength, maxEvents int) ([]Record, int) {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if minLength > 0 && r.Length < minLength {
			continue
		}
		kept = append(kept, r)
	}
	if maxEvents > 0 && len(kept) > maxEvents {
		kept = kept[:maxEvents]
	}
	return kept, len(records) - len(kept)
}

func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
