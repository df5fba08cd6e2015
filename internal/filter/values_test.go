package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementType(t *testing.T) {
	assert.Equal(t, "Edm.String", ElementType("Collection(Edm.String)"))
	assert.Equal(t, "Edm.Int32", ElementType(" Edm.Int32 "))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		edmType string
		raw     string
		want    interface{}
	}{
		{"Edm.Int32", "42", int64(42)},
		{"Edm.Double", "4.5", 4.5},
		{"Edm.Boolean", "true", true},
		{"Edm.String", "O'Brien", "O'Brien"},
		{"Edm.String", "'O''Brien'", "O'Brien"},
		{"Collection(Edm.String)", "premium", "premium"},
		{"Collection(Edm.Int64)", "7", int64(7)},
		{"Edm.Int32", "null", nil},
		{"", "anything", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.edmType+"/"+tt.raw, func(t *testing.T) {
			got, err := ParseValue(tt.edmType, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueDate(t *testing.T) {
	got, err := ParseValue("Edm.DateTimeOffset", "2024-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got)

	rendered, err := RenderValue(got)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", rendered)
}

func TestParseValueErrors(t *testing.T) {
	for _, tc := range [][2]string{
		{"Edm.Int32", "4.5"},
		{"Edm.Double", "abc"},
		{"Edm.Boolean", "yes"},
		{"Edm.DateTimeOffset", "yesterday"},
	} {
		_, err := ParseValue(tc[0], tc[1])
		assert.Error(t, err, tc)
	}
}
