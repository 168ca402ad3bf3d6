package data

import (
	"strings"
	"testing"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBarsCSV(t *testing.T) {
	input := `Date,Symbol,Open,High,Low,Close,Volume
2024-01-02,aapl,10,11,9,10.5,1200
2024-01-03, MSFT ,20,21,19,20.5,
`
	bars, err := ReadBarsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, day(2), bars[0].Date)
	assert.Equal(t, 10.5, bars[0].Close)
	assert.Equal(t, int64(1200), bars[0].Volume)

	assert.Equal(t, "MSFT", bars[1].Symbol)
	assert.Equal(t, int64(0), bars[1].Volume)
}

func TestReadBarsCSV_Empty(t *testing.T) {
	bars, err := ReadBarsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestReadBarsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "missing column",
			input: "symbol,date,open,high,low\nAAPL,2024-01-02,1,2,0\n",
			want:  ErrMissingColumn,
		},
		{
			name:  "bad date",
			input: "symbol,date,open,high,low,close\nAAPL,02/01/2024,1,2,0,1\n",
			want:  models.ErrInvalidDate,
		},
		{
			name:  "bad price",
			input: "symbol,date,open,high,low,close\nAAPL,2024-01-02,1,x,0,1\n",
			want:  models.ErrInvalidPrice,
		},
		{
			name:  "bad volume",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,lots\n",
			want:  models.ErrInvalidVolume,
		},
		{
			name:  "fractional volume",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,12.5\n",
			want:  models.ErrInvalidVolume,
		},
		{
			name:  "NaN volume",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,NaN\n",
			want:  models.ErrInvalidVolume,
		},
		{
			name:  "infinite volume",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,Inf\n",
			want:  models.ErrInvalidVolume,
		},
		{
			name:  "volume overflow",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,9223372036854775808\n",
			want:  models.ErrInvalidVolume,
		},
		{
			name:  "negative volume",
			input: "symbol,date,open,high,low,close,volume\nAAPL,2024-01-02,1,2,0,1,-5\n",
			want:  models.ErrInvalidVolume,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBarsCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadBarsCSV_InvalidBar(t *testing.T) {
	input := "symbol,date,open,high,low,close\nAAPL,2024-01-02,1,1,2,1\n"
	_, err := ReadBarsCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
