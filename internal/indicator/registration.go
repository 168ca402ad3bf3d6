package indicator

import (
	"fmt"

	indicatorpkg "github.com/mohamedkhairy/stock-factors/pkg/indicator"
)

// RegisterAllFactors registers the default factor grid
func RegisterAllFactors(catalog *FactorCatalog) error {
	registrations := []func(*FactorCatalog) error{
		registerBollinger,
		registerAroon,
		registerStochastic,
		registerIchimoku,
		registerRateOfChange,
		registerLWMA,
		registerTrueRange,
	}
	for _, register := range registrations {
		if err := register(catalog); err != nil {
			return err
		}
	}
	return nil
}

// registerFactor builds the factor once so the catalog key always matches the
// factor's own name and a bad parameter set fails at startup.
func registerFactor(catalog *FactorCatalog, factory FactorFactory, metadata FactorMetadata) error {
	f, err := factory()
	if err != nil {
		return err
	}

	metadata.Name = f.Name()
	metadata.Type = "window"
	metadata.Outputs = f.OutputNames()
	metadata.Inputs = make([]string, 0, len(f.Inputs()))
	for _, s := range f.Inputs() {
		metadata.Inputs = append(metadata.Inputs, string(s))
	}
	if metadata.Parameters == nil {
		metadata.Parameters = map[string]interface{}{}
	}
	metadata.Parameters["window_length"] = f.WindowLength()

	return catalog.Register(f.Name(), factory, metadata)
}

func registerBollinger(catalog *FactorCatalog) error {
	grid := []struct {
		window int
		k      float64
	}{
		{20, 2.0},
		{20, 2.5},
		{10, 1.5},
		{50, 2.0},
	}
	for _, g := range grid {
		window, k := g.window, g.k
		if err := registerFactor(catalog,
			func() (indicatorpkg.Factor, error) { return indicatorpkg.NewBollingerBands(window, k) },
			FactorMetadata{
				Description: fmt.Sprintf("Bollinger Bands (%d window, %.1f std)", window, k),
				Category:    "volatility",
				Parameters:  map[string]interface{}{"k": k},
			},
		); err != nil {
			return err
		}
	}
	return nil
}

func registerAroon(catalog *FactorCatalog) error {
	for _, window := range []int{14, 25} {
		window := window
		if err := registerFactor(catalog,
			func() (indicatorpkg.Factor, error) { return indicatorpkg.NewAroon(window) },
			FactorMetadata{
				Description: fmt.Sprintf("Aroon up/down (%d window)", window),
				Category:    "trend",
			},
		); err != nil {
			return err
		}
	}
	return nil
}

func registerStochastic(catalog *FactorCatalog) error {
	for _, window := range []int{5, indicatorpkg.DefaultFastStochasticWindow} {
		window := window
		if err := registerFactor(catalog,
			func() (indicatorpkg.Factor, error) { return indicatorpkg.NewFastStochasticOscillator(window) },
			FactorMetadata{
				Description: fmt.Sprintf("Fast stochastic %%K (%d window)", window),
				Category:    "momentum",
			},
		); err != nil {
			return err
		}
	}
	return nil
}

func registerIchimoku(catalog *FactorCatalog) error {
	params := indicatorpkg.DefaultIchimokuParams()
	return registerFactor(catalog,
		func() (indicatorpkg.Factor, error) { return indicatorpkg.NewIchimokuKinkoHyo(params) },
		FactorMetadata{
			Description: "Ichimoku Kinko Hyo",
			Category:    "trend",
			Parameters: map[string]interface{}{
				"tenkan_sen_length":  params.TenkanSenLength,
				"kijun_sen_length":   params.KijunSenLength,
				"chikou_span_length": params.ChikouSpanLength,
			},
		},
	)
}

func registerRateOfChange(catalog *FactorCatalog) error {
	for _, window := range []int{10, 20} {
		window := window
		if err := registerFactor(catalog,
			func() (indicatorpkg.Factor, error) { return indicatorpkg.NewRateOfChangePercentage(window) },
			FactorMetadata{
				Description: fmt.Sprintf("Rate of change percentage (%d window)", window),
				Category:    "momentum",
			},
		); err != nil {
			return err
		}
	}
	return nil
}

func registerLWMA(catalog *FactorCatalog) error {
	for _, window := range []int{10, 20} {
		window := window
		if err := registerFactor(catalog,
			func() (indicatorpkg.Factor, error) { return indicatorpkg.NewLinearWeightedMovingAverage(window) },
			FactorMetadata{
				Description: fmt.Sprintf("Linear weighted moving average (%d window)", window),
				Category:    "trend",
			},
		); err != nil {
			return err
		}
	}
	return nil
}

func registerTrueRange(catalog *FactorCatalog) error {
	return registerFactor(catalog,
		func() (indicatorpkg.Factor, error) { return indicatorpkg.NewTrueRange() },
		FactorMetadata{
			Description: "True range",
			Category:    "volatility",
		},
	)
}
