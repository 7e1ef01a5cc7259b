// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sizing

import (
	"testing"

	"github.com/pdiddy/doc2md/pkg/types"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.00 B"},
		{1, "1.00 B"},
		{500, "500.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{3 << 40, "3.00 TB"},
		// No escalation past TB.
		{1 << 50, "1024.00 TB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.n); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestReduction(t *testing.T) {
	tests := []struct {
		name            string
		original        int64
		converted       int64
		want            string
		wantImprovement bool
	}{
		{
			name:            "smaller output",
			original:        1000,
			converted:       400,
			want:            "60.0% smaller",
			wantImprovement: true,
		},
		{
			name:            "grown output",
			original:        400,
			converted:       1000,
			want:            "-150.0% smaller",
			wantImprovement: false,
		},
		{
			name:            "unchanged size is not an improvement",
			original:        1000,
			converted:       1000,
			want:            "0.0% smaller",
			wantImprovement: false,
		},
		{
			name:            "zero original avoids division",
			original:        0,
			converted:       500,
			want:            "N/A",
			wantImprovement: false,
		},
		{
			name:            "fractional percentage rounds to one decimal",
			original:        3,
			converted:       1,
			want:            "66.7% smaller",
			wantImprovement: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, improvement := Reduction(tt.original, tt.converted)
			if got != tt.want {
				t.Errorf("Reduction(%d, %d) = %q, want %q", tt.original, tt.converted, got, tt.want)
			}
			if improvement != tt.wantImprovement {
				t.Errorf("improvement = %v, want %v", improvement, tt.wantImprovement)
			}
		})
	}
}

func TestReport(t *testing.T) {
	res := types.ConversionResult{
		Name:          "slides.pptx",
		Status:        types.ConversionSuccess,
		Text:          "# Deck",
		OriginalSize:  2048,
		ConvertedSize: 512,
	}

	got := Report(res)

	if got.Name != "slides.pptx" {
		t.Errorf("Name = %q, want %q", got.Name, "slides.pptx")
	}
	if got.OriginalBytes != 2048 || got.ConvertedBytes != 512 {
		t.Errorf("bytes = (%d, %d), want (2048, 512)", got.OriginalBytes, got.ConvertedBytes)
	}
	if got.Original != "2.00 KB" {
		t.Errorf("Original = %q, want %q", got.Original, "2.00 KB")
	}
	if got.Converted != "512.00 B" {
		t.Errorf("Converted = %q, want %q", got.Converted, "512.00 B")
	}
	if got.Reduction != "75.0% smaller" {
		t.Errorf("Reduction = %q, want %q", got.Reduction, "75.0% smaller")
	}
	if !got.Improvement {
		t.Error("Improvement should be true for a 75% reduction")
	}
}

func TestReportAllPreservesOrder(t *testing.T) {
	results := []types.ConversionResult{
		{Name: "z.pdf", OriginalSize: 100, ConvertedSize: 50},
		{Name: "a.docx", OriginalSize: 200, ConvertedSize: 100},
	}

	reports := ReportAll(results)
	if len(reports) != 2 {
		t.Fatalf("len = %d, want 2", len(reports))
	}
	if reports[0].Name != "z.pdf" || reports[1].Name != "a.docx" {
		t.Errorf("order = [%s, %s], want [z.pdf, a.docx]", reports[0].Name, reports[1].Name)
	}
}
