package staging

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// primaryHeaderKeys is the fixed allow-list of FITS header keys shown in
// the primary column of the review screen. Everything else is optional.
var primaryHeaderKeys = []string{
	"SIMPLE", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2",
	"DATE-OBS", "DATE", "OBJECT", "EXPTIME", "TELESCOP",
	"INSTRUME", "FILTER", "GAIN", "AIRMASS", "RA", "DEC",
}

var primaryKeyRank = func() map[string]int {
	rank := make(map[string]int, len(primaryHeaderKeys))
	for i, key := range primaryHeaderKeys {
		rank[key] = i
	}
	return rank
}()

// HeaderEntry is one rendered FITS header line.
type HeaderEntry struct {
	Key   string
	Value string
}

// SplitHeader divides a FITS header into primary entries (the allow-list,
// in its canonical order) and optional entries (everything else,
// alphabetical). Key matching is case-insensitive.
func SplitHeader(header map[string]any) (primary, optional []HeaderEntry) {
	for key, value := range header {
		entry := HeaderEntry{Key: key, Value: FormatHeaderValue(value)}
		if _, ok := primaryKeyRank[strings.ToUpper(key)]; ok {
			primary = append(primary, entry)
		} else {
			optional = append(optional, entry)
		}
	}
	sort.Slice(primary, func(i, j int) bool {
		return primaryKeyRank[strings.ToUpper(primary[i].Key)] < primaryKeyRank[strings.ToUpper(primary[j].Key)]
	})
	sort.Slice(optional, func(i, j int) bool {
		return optional[i].Key < optional[j].Key
	})
	return primary, optional
}

// FormatHeaderValue renders one header value for display: em dash for
// missing values, JSON for non-scalar values, plain formatting otherwise.
func FormatHeaderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "—"
	case string:
		if v == "" {
			return "—"
		}
		return v
	case bool, float64, float32, int, int64:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// FormatSizeKB renders a byte count as whole kilobytes, e.g. "142 KB".
func FormatSizeKB(sizeBytes int64) string {
	kb := int64(math.Round(float64(sizeBytes) / 1024))
	return fmt.Sprintf("%d KB", kb)
}
