package indicator

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// IchimokuParams holds the lookbacks of an Ichimoku Kinko Hyo indicator
type IchimokuParams struct {
	WindowLength     int
	TenkanSenLength  int
	KijunSenLength   int
	ChikouSpanLength int
}

// DefaultIchimokuParams returns the classic 52/9/26/26 configuration
func DefaultIchimokuParams() IchimokuParams {
	return IchimokuParams{
		WindowLength:     52,
		TenkanSenLength:  9,
		KijunSenLength:   26,
		ChikouSpanLength: 26,
	}
}

// Validate checks that every sub-window fits inside the window
func (p IchimokuParams) Validate() error {
	if err := validateWindowLength("window_length", p.WindowLength, 1); err != nil {
		return err
	}
	subWindows := []struct {
		name  string
		value int
	}{
		{"tenkan_sen_length", p.TenkanSenLength},
		{"kijun_sen_length", p.KijunSenLength},
		{"chikou_span_length", p.ChikouSpanLength},
	}
	for _, sw := range subWindows {
		if err := validateSubWindow(sw.name, sw.value, p.WindowLength); err != nil {
			return err
		}
	}
	return nil
}

// IchimokuKinkoHyo computes the five Ichimoku lines from high, low and close windows:
//
//	tenkan_sen    = (max high + min low) / 2 over the last tenkan_sen_length rows
//	kijun_sen     = (max high + min low) / 2 over the last kijun_sen_length rows
//	senkou_span_a = (tenkan_sen + kijun_sen) / 2
//	senkou_span_b = (max high + min low) / 2 over the whole window
//	chikou_span   = close at row window_length - chikou_span_length
type IchimokuKinkoHyo struct {
	params IchimokuParams
	name   string
}

// NewIchimokuKinkoHyo validates params and creates the indicator
func NewIchimokuKinkoHyo(params IchimokuParams) (*IchimokuKinkoHyo, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &IchimokuKinkoHyo{
		params: params,
		name: fmt.Sprintf("ichimoku_%d_%d_%d_%d",
			params.WindowLength,
			params.TenkanSenLength,
			params.KijunSenLength,
			params.ChikouSpanLength,
		),
	}, nil
}

func (ik *IchimokuKinkoHyo) Name() string           { return ik.name }
func (ik *IchimokuKinkoHyo) WindowLength() int      { return ik.params.WindowLength }
func (ik *IchimokuKinkoHyo) Params() IchimokuParams { return ik.params }
func (ik *IchimokuKinkoHyo) Inputs() []Series       { return []Series{High, Low, Close} }
func (ik *IchimokuKinkoHyo) OutputNames() []string  { return append([]string(nil), ichimokuNames...) }
func (ik *IchimokuKinkoHyo) NewOutput(n int) Output {
	return NewIchimokuOutput(n)
}

// Compute expects high, low and close windows, in that order
func (ik *IchimokuKinkoHyo) Compute(today time.Time, assets []string, out Output, windows ...*mat.Dense) error {
	records, ok := out.(IchimokuOutput)
	if !ok {
		return outputTypeError(ik.name, out)
	}
	if len(assets) == 0 {
		return nil
	}
	wl := ik.params.WindowLength
	if err := checkShape(ik.name, assets, out, windows, 3, 1, wl); err != nil {
		return err
	}

	highs, lows, closes := windows[0], windows[1], windows[2]
	highCol := make([]float64, wl)
	lowCol := make([]float64, wl)
	tenkan := wl - ik.params.TenkanSenLength
	kijun := wl - ik.params.KijunSenLength
	chikou := wl - ik.params.ChikouSpanLength

	for j := range assets {
		h := column(highs, j, highCol)
		l := column(lows, j, lowCol)

		tenkanSen := (nanMax(h[tenkan:]) + nanMin(l[tenkan:])) / 2
		kijunSen := (nanMax(h[kijun:]) + nanMin(l[kijun:])) / 2
		records[j] = IchimokuRecord{
			TenkanSen:   tenkanSen,
			KijunSen:    kijunSen,
			SenkouSpanA: (tenkanSen + kijunSen) / 2,
			SenkouSpanB: (nanMax(h) + nanMin(l)) / 2,
			ChikouSpan:  closes.At(chikou, j),
		}
	}
	return nil
}
