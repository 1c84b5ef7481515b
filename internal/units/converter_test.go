package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	converter := NewConverter(DefaultTable())

	tests := []struct {
		name     string
		value    float64
		fromUnit string
		toUnit   string
		want     float64
		wantErr  error
	}{
		{
			name:     "identity conversion returns value unchanged",
			value:    42.5,
			fromUnit: "kwh",
			toUnit:   "kwh",
			want:     42.5,
		},
		{
			name:     "identity works for units absent from the table",
			value:    7,
			fromUnit: "furlongs",
			toUnit:   "furlongs",
			want:     7,
		},
		{
			name:     "miles to kilometres",
			value:    100,
			fromUnit: "miles",
			toUnit:   "kilometres",
			want:     160.934,
		},
		{
			name:     "unit labels match case-insensitively",
			value:    100,
			fromUnit: "Miles",
			toUnit:   "Kilometres",
			want:     160.934,
		},
		{
			name:     "reverse pair is not implied",
			value:    160.934,
			fromUnit: "kilometres",
			toUnit:   "miles",
			wantErr:  ErrUnknownConversion,
		},
		{
			name:     "unknown pair",
			value:    5,
			fromUnit: "furlongs",
			toUnit:   "miles",
			wantErr:  ErrUnknownConversion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := converter.Convert(tt.value, tt.fromUnit, tt.toUnit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvertWithInjectedTable(t *testing.T) {
	table := Table{
		{From: "kilometres", To: "miles"}: 1 / MilesToKilometres,
	}
	converter := NewConverter(table)

	got, err := converter.Convert(160.934, "kilometres", "miles")
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 1e-9)

	// The injected table replaces the default one entirely.
	_, err = converter.Convert(100, "miles", "kilometres")
	assert.ErrorIs(t, err, ErrUnknownConversion)
}

func TestConvertNilTable(t *testing.T) {
	converter := NewConverter(nil)

	got, err := converter.Convert(3, "litres", "litres")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = converter.Convert(3, "litres", "gallons")
	assert.ErrorIs(t, err, ErrUnknownConversion)
}
