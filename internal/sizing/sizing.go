// Package sizing derives size comparisons for conversion results: human
// scaled byte counts and the percentage reduction between a document's
// original and converted forms. Everything here is pure and stateless.
package sizing

import (
	"fmt"

	"github.com/pdiddy/doc2md/pkg/types"
)

// notApplicable is reported instead of a percentage when the original size
// is zero.
const notApplicable = "N/A"

// FormatSize renders n as a human-scaled string with two decimal places:
// "0.00 B", "1.50 KB", "1.00 TB". Units are 1024-based and stop at TB; a
// value past 1024 TB stays in TB rather than escalating further.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}

// Reduction renders the percentage decrease from original to converted as
// "<pct>% smaller" with one decimal place, and reports whether the change
// is an improvement (strictly smaller). A zero original yields "N/A" and no
// improvement instead of a division by zero; growth yields a negative
// percentage and no improvement.
func Reduction(original, converted int64) (string, bool) {
	if original == 0 {
		return notApplicable, false
	}
	pct := float64(original-converted) / float64(original) * 100
	return fmt.Sprintf("%.1f%% smaller", pct), pct > 0
}

// Report derives the size comparison for one conversion result.
func Report(res types.ConversionResult) types.SizeReport {
	reduction, improvement := Reduction(res.OriginalSize, res.ConvertedSize)
	return types.SizeReport{
		Name:           res.Name,
		OriginalBytes:  res.OriginalSize,
		ConvertedBytes: res.ConvertedSize,
		Original:       FormatSize(res.OriginalSize),
		Converted:      FormatSize(res.ConvertedSize),
		Reduction:      reduction,
		Improvement:    improvement,
	}
}

// ReportAll derives size comparisons for a ledger listing, preserving order.
func ReportAll(results []types.ConversionResult) []types.SizeReport {
	reports := make([]types.SizeReport, len(results))
	for i, res := range results {
		reports[i] = Report(res)
	}
	return reports
}
