package indicator

import "math"

// DefaultOutput is the name of the single column of a Vector
const DefaultOutput = "value"

// Output is a pre-allocated buffer a Factor writes into.
// Names and Columns always follow the same declared order.
type Output interface {
	// Len returns the number of assets the buffer holds
	Len() int

	// Names returns the output names in positional order
	Names() []string

	// Columns returns one slice per output name, in the order of Names
	Columns() [][]float64

	// SetMissing marks every output of asset i as NaN
	SetMissing(i int)
}

// Vector is the output of single-valued factors
type Vector []float64

// NewVector allocates a Vector of n NaN values
func NewVector(n int) Vector {
	v := make(Vector, n)
	fillNaN(v)
	return v
}

func (v Vector) Len() int             { return len(v) }
func (v Vector) Names() []string      { return []string{DefaultOutput} }
func (v Vector) Columns() [][]float64 { return [][]float64{v} }
func (v Vector) SetMissing(i int)     { v[i] = math.NaN() }

// Field returns the vector itself for DefaultOutput
func (v Vector) Field(name string) ([]float64, bool) {
	return field(v.Names(), v.Columns(), name)
}

// BandsOutput is a fixed, ordered group of same-shaped columns.
// Positional order is (lower, middle, upper).
type BandsOutput struct {
	Lower  []float64
	Middle []float64
	Upper  []float64
}

var bandsNames = []string{"lower", "middle", "upper"}

// NewBandsOutput allocates a BandsOutput of n NaN values per band
func NewBandsOutput(n int) *BandsOutput {
	b := &BandsOutput{
		Lower:  make([]float64, n),
		Middle: make([]float64, n),
		Upper:  make([]float64, n),
	}
	fillNaN(b.Lower)
	fillNaN(b.Middle)
	fillNaN(b.Upper)
	return b
}

func (b *BandsOutput) Len() int { return len(b.Middle) }

func (b *BandsOutput) Names() []string { return append([]string(nil), bandsNames...) }

func (b *BandsOutput) Columns() [][]float64 {
	return [][]float64{b.Lower, b.Middle, b.Upper}
}

func (b *BandsOutput) SetMissing(i int) {
	b.Lower[i] = math.NaN()
	b.Middle[i] = math.NaN()
	b.Upper[i] = math.NaN()
}

// Unpack returns the bands in positional order. The slices are the
// same ones reachable through the named fields.
func (b *BandsOutput) Unpack() (lower, middle, upper []float64) {
	return b.Lower, b.Middle, b.Upper
}

// Field returns the band with the given name
func (b *BandsOutput) Field(name string) ([]float64, bool) {
	return field(b.Names(), b.Columns(), name)
}

// AroonRecord holds the Aroon lines of one asset
type AroonRecord struct {
	Down float64 `json:"down"`
	Up   float64 `json:"up"`
}

// AroonOutput is a compound record per asset with fields (down, up)
type AroonOutput []AroonRecord

var aroonNames = []string{"down", "up"}

// NewAroonOutput allocates n NaN records
func NewAroonOutput(n int) AroonOutput {
	out := make(AroonOutput, n)
	for i := range out {
		out.SetMissing(i)
	}
	return out
}

func (a AroonOutput) Len() int        { return len(a) }
func (a AroonOutput) Names() []string { return append([]string(nil), aroonNames...) }

func (a AroonOutput) Columns() [][]float64 {
	down := make([]float64, len(a))
	up := make([]float64, len(a))
	for i, r := range a {
		down[i] = r.Down
		up[i] = r.Up
	}
	return [][]float64{down, up}
}

func (a AroonOutput) SetMissing(i int) {
	a[i] = AroonRecord{Down: math.NaN(), Up: math.NaN()}
}

// Field returns a copy of the named field across all assets
func (a AroonOutput) Field(name string) ([]float64, bool) {
	return field(a.Names(), a.Columns(), name)
}

// IchimokuRecord holds the five Ichimoku lines of one asset
type IchimokuRecord struct {
	TenkanSen   float64 `json:"tenkan_sen"`
	KijunSen    float64 `json:"kijun_sen"`
	SenkouSpanA float64 `json:"senkou_span_a"`
	SenkouSpanB float64 `json:"senkou_span_b"`
	ChikouSpan  float64 `json:"chikou_span"`
}

// IchimokuOutput is a compound record per asset
type IchimokuOutput []IchimokuRecord

var ichimokuNames = []string{"tenkan_sen", "kijun_sen", "senkou_span_a", "senkou_span_b", "chikou_span"}

// NewIchimokuOutput allocates n NaN records
func NewIchimokuOutput(n int) IchimokuOutput {
	out := make(IchimokuOutput, n)
	for i := range out {
		out.SetMissing(i)
	}
	return out
}

func (o IchimokuOutput) Len() int        { return len(o) }
func (o IchimokuOutput) Names() []string { return append([]string(nil), ichimokuNames...) }

func (o IchimokuOutput) Columns() [][]float64 {
	cols := make([][]float64, len(ichimokuNames))
	for c := range cols {
		cols[c] = make([]float64, len(o))
	}
	for i, r := range o {
		cols[0][i] = r.TenkanSen
		cols[1][i] = r.KijunSen
		cols[2][i] = r.SenkouSpanA
		cols[3][i] = r.SenkouSpanB
		cols[4][i] = r.ChikouSpan
	}
	return cols
}

func (o IchimokuOutput) SetMissing(i int) {
	nan := math.NaN()
	o[i] = IchimokuRecord{TenkanSen: nan, KijunSen: nan, SenkouSpanA: nan, SenkouSpanB: nan, ChikouSpan: nan}
}

// Field returns a copy of the named field across all assets
func (o IchimokuOutput) Field(name string) ([]float64, bool) {
	return field(o.Names(), o.Columns(), name)
}

func field(names []string, cols [][]float64, name string) ([]float64, bool) {
	for i, n := range names {
		if n == name {
			return cols[i], true
		}
	}
	return nil, false
}

func fillNaN(s []float64) {
	nan := math.NaN()
	for i := range s {
		s[i] = nan
	}
}
