package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext    string
		want   Kind
		wantOK bool
	}{
		{".md", KindDocument, true},
		{"MDX", KindDocument, true},
		{".xlsx", KindSpreadsheet, true},
		{".ppt", KindSlideDeck, true},
		{".pdf", KindPDF, true},
		{".htm", KindWebpage, true},
		{".docx", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got, ok := KindForExt(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFidelityRank_Ordering(t *testing.T) {
	t.Parallel()

	assert.Greater(t, FidelityRank(".pdf"), FidelityRank(".mdx"))
	assert.Greater(t, FidelityRank(".mdx"), FidelityRank(".md"))
	assert.Greater(t, FidelityRank(".md"), FidelityRank(".pptx"))
	assert.Greater(t, FidelityRank(".pptx"), FidelityRank(".xlsx"))
	assert.Zero(t, FidelityRank(".txt"))
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"free", TierFree, false},
		{" Member ", TierMember, false},
		{"ARCHITECT", TierArchitect, false},
		{"inner_circle", TierInnerCircle, false},
		{"inner-circle", TierInnerCircle, false},
		{"gold", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormats_DedupesAndKeepsOrder(t *testing.T) {
	t.Parallel()

	got, err := ParseFormats([]string{"letter", "A4", "LETTER", ""})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatLetter, FormatA4}, got)

	_, err = ParseFormats([]string{"A5"})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseQualities(t *testing.T) {
	t.Parallel()

	got, err := ParseQualities([]string{"Premium", "standard"})
	require.NoError(t, err)
	assert.Equal(t, []Quality{QualityPremium, QualityStandard}, got)

	_, err = ParseQualities([]string{"ultra"})
	assert.ErrorIs(t, err, ErrInvalidQuality)
}

func TestTaskKey(t *testing.T) {
	t.Parallel()

	task := Task{DocumentID: "legacy-canvas", Tier: TierFree, Format: FormatA4, Quality: QualityStandard}
	assert.Equal(t, "legacy-canvas/free/A4/standard", task.Key())

	task.Canonical = true
	assert.Equal(t, "legacy-canvas/canonical", task.Key())
}

func TestTierConfig_Primary(t *testing.T) {
	t.Parallel()

	var empty TierConfig
	assert.Equal(t, FormatA4, empty.PrimaryFormat())
	assert.Equal(t, QualityStandard, empty.PrimaryQuality())

	cfg := TierConfig{Formats: []Format{FormatLetter}, Qualities: []Quality{QualityPremium}}
	assert.Equal(t, FormatLetter, cfg.PrimaryFormat())
	assert.Equal(t, QualityPremium, cfg.PrimaryQuality())
}

func TestKind_Predicates(t *testing.T) {
	t.Parallel()

	assert.False(t, KindPDF.Lossy())
	assert.True(t, KindDocument.Lossy())
	assert.True(t, KindSpreadsheet.FixedLayout())
	assert.False(t, KindWebpage.FixedLayout())
	assert.True(t, TierMember.RequiresAuth())
	assert.False(t, TierFree.RequiresAuth())
}
