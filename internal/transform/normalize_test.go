package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestCleanPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  *string
		want *float64
	}{
		{"thousands then decimal", strptr("1,229.00 DH"), floatptr(1229.00)},
		{"comma decimal", strptr("299,99 DH"), floatptr(299.99)},
		{"plain integer", strptr("499 Dhs"), floatptr(499)},
		{"dot thousands comma decimal", strptr("1.234,56 MAD"), floatptr(1234.56)},
		{"currency only", strptr("DH"), nil},
		{"empty", strptr(""), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CleanPrice(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestCleanNumeric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  *string
		want *float64
	}{
		{"plain float", strptr("4.4"), floatptr(4.4)},
		{"embedded percent", strptr("25%"), floatptr(25)},
		{"comma decimal", strptr("4,5 sur 5"), floatptr(4.5)},
		{"leading text", strptr("environ 12 avis"), floatptr(12)},
		{"no digits", strptr("aucun"), nil},
		{"empty", strptr(""), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CleanNumeric(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestCleanDiscount(t *testing.T) {
	t.Parallel()

	got := CleanDiscount(strptr("-25%"))
	require.NotNil(t, got)
	assert.InDelta(t, 25.0, *got, 1e-9)

	got = CleanDiscount(strptr("18%"))
	require.NotNil(t, got)
	assert.InDelta(t, 18.0, *got, 1e-9)

	assert.Nil(t, CleanDiscount(strptr("%")))
	assert.Nil(t, CleanDiscount(nil))
}

func TestCleanBool(t *testing.T) {
	t.Parallel()

	assert.True(t, CleanBool(strptr("true")))
	assert.False(t, CleanBool(strptr("false")))
	assert.False(t, CleanBool(strptr("0")))
	assert.True(t, CleanBool(strptr("Boutique Officielle")))
	assert.False(t, CleanBool(strptr("")))
	assert.False(t, CleanBool(strptr("   ")))
	assert.False(t, CleanBool(nil))
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", "2026-08-31T09:30:00Z", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 offset", "2026-08-31T10:30:00+01:00", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)},
		{"no zone micros", "2026-08-31T09:30:00.123456", time.Date(2026, 8, 31, 9, 30, 0, 123456000, time.UTC)},
		{"space separated", "2026-08-31 09:30:00", time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseTimestampMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseTimestamp("31/08/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed timestamp")

	_, err = ParseTimestamp("")
	require.Error(t, err)
}

func floatptr(f float64) *float64 { return &f }
