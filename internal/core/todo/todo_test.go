package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_OrderAndRank(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 13)
	assert.Equal(t, CategoryGitLab, cats[0])
	assert.Equal(t, CategorySSL, cats[len(cats)-1])

	for i, c := range cats {
		assert.Equal(t, i, c.Rank(), c)
		assert.NotEmpty(t, c.Toggle(), c)
	}

	assert.Equal(t, len(cats), Category("XYZ").Rank(), "unknown categories sort last")
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "SEC", want: CategorySecurity},
		{in: "sec", want: CategorySecurity},
		{in: "backups", want: CategoryBackup},
		{in: " ssl ", want: CategorySSL},
		{in: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	require.Error(t, err)
}

func TestParseID(t *testing.T) {
	cat, n, err := ParseID("SEC-001")
	require.NoError(t, err)
	assert.Equal(t, CategorySecurity, cat)
	assert.Equal(t, 1, n)

	cat, n, err = ParseID("BAK-1234")
	require.NoError(t, err)
	assert.Equal(t, CategoryBackup, cat)
	assert.Equal(t, 1234, n)

	for _, bad := range []string{"", "SEC001", "SEC-1", "sec-001", "ABC-001", "SEC-001x"} {
		_, _, err := ParseID(bad)
		require.ErrorIs(t, err, ErrInvalidID, bad)
	}

	assert.Equal(t, "SEC-001", NormalizeID(" sec-001 "))
}

func TestIDSeq(t *testing.T) {
	seq := NewIDSeq(CategoryToken)
	assert.Equal(t, "TOK-001", seq.Next())
	assert.Equal(t, "TOK-002", seq.Next())
	assert.Equal(t, "TOK-003", seq.Next())
}

func TestItem_Validate(t *testing.T) {
	valid := Item{ID: "SEC-001", Category: CategorySecurity, Priority: PriorityHigh, Title: "Security update available"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Item)
	}{
		{"bad id", func(it *Item) { it.ID = "SEC1" }},
		{"prefix mismatch", func(it *Item) { it.ID = "BAK-001" }},
		{"bad priority", func(it *Item) { it.Priority = "urgent" }},
		{"empty title", func(it *Item) { it.Title = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := valid
			tt.mutate(&it)
			require.ErrorIs(t, it.Validate(), ErrInvalidItem)
		})
	}
}
