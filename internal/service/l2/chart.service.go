package l2_service

import (
	"fmt"

	"stockforecast/internal/domain"
	l1_service "stockforecast/internal/service/l1"

	"github.com/guregu/null/v6"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

type ChartService interface {
	Assemble(chart domain.StitchedChart, historicalLabel, predictedLabel string, hints domain.StyleHints) (*domain.ChartDescriptor, error)
	BuildPredictionChart(historicalDates []string, historicalPrices, predictedPrices []float64, selectedStockLabel string) (*domain.ChartDescriptor, error)
	BuildFromPrediction(prediction domain.Prediction, selectedStockLabel string) (*domain.ChartDescriptor, error)
}

const axisPaddingPct = 0.05

var defaultStyleHints = domain.StyleHints{
	TimeUnit:   "day",
	DateFormat: "YYYY-MM-DD",
	XAxisTitle: "Date",
	YAxisTitle: "Price",
}

type chartServiceHandler struct {
	StyleHints domain.StyleHints
}

// NewChartService returns a ChartService whose BuildPredictionChart uses
// hints, with any empty field falling back to the defaults.
func NewChartService(hints domain.StyleHints) ChartService {
	return chartServiceHandler{
		StyleHints: withDefaults(hints),
	}
}

func withDefaults(hints domain.StyleHints) domain.StyleHints {
	if hints.TimeUnit == "" {
		hints.TimeUnit = defaultStyleHints.TimeUnit
	}
	if hints.DateFormat == "" {
		hints.DateFormat = defaultStyleHints.DateFormat
	}
	if hints.XAxisTitle == "" {
		hints.XAxisTitle = defaultStyleHints.XAxisTitle
	}
	if hints.YAxisTitle == "" {
		hints.YAxisTitle = defaultStyleHints.YAxisTitle
	}
	return hints
}

func (h chartServiceHandler) Assemble(
	chart domain.StitchedChart,
	historicalLabel,
	predictedLabel string,
	hints domain.StyleHints,
) (*domain.ChartDescriptor, error) {
	if len(chart.Labels) != len(chart.HistoricalLine) || len(chart.Labels) != len(chart.PredictedLine) {
		return nil, fmt.Errorf(
			"%w: cannot assemble chart with %d labels, %d historical and %d predicted values",
			domain.ErrInternalInconsistency,
			len(chart.Labels),
			len(chart.HistoricalLine),
			len(chart.PredictedLine),
		)
	}
	if len(chart.Labels) == 0 {
		return nil, domain.ErrEmptyHistoricalSeries
	}

	hints = withDefaults(hints)
	out := &domain.ChartDescriptor{
		Labels: copyStrings(chart.Labels),
		Series: []domain.ChartSeries{
			{
				Name:   historicalLabel,
				Values: copyFloats(chart.HistoricalLine),
				Role:   domain.SeriesRoleHistorical,
			},
			{
				Name:   predictedLabel,
				Values: copyFloats(chart.PredictedLine),
				Role:   domain.SeriesRolePredicted,
			},
		},
		AxisHints: domain.AxisHints{
			TimeUnit:   hints.TimeUnit,
			DateFormat: hints.DateFormat,
			XAxisTitle: hints.XAxisTitle,
			YAxisTitle: hints.YAxisTitle,
		},
	}

	lo, hi, err := valueRange(chart)
	if err != nil {
		return nil, err
	}
	padding := (hi - lo) * axisPaddingPct
	if padding == 0 {
		padding = hi * axisPaddingPct
	}
	out.AxisHints.SuggestedMin = null.FloatFrom(lo - padding)
	out.AxisHints.SuggestedMax = null.FloatFrom(hi + padding)

	summary, err := summarize(chart)
	if err != nil {
		return nil, err
	}
	out.Summary = *summary

	return out, nil
}

func (h chartServiceHandler) BuildPredictionChart(
	historicalDates []string,
	historicalPrices,
	predictedPrices []float64,
	selectedStockLabel string,
) (*domain.ChartDescriptor, error) {
	historical, err := domain.NewHistoricalSeries(selectedStockLabel, historicalDates, historicalPrices)
	if err != nil {
		return nil, err
	}
	return h.BuildFromPrediction(domain.Prediction{
		Symbol:     selectedStockLabel,
		Historical: *historical,
		Predicted:  predictedPrices,
	}, selectedStockLabel)
}

func (h chartServiceHandler) BuildFromPrediction(prediction domain.Prediction, selectedStockLabel string) (*domain.ChartDescriptor, error) {
	stitched, err := l1_service.StitchSeries(prediction.Historical, prediction.Predicted)
	if err != nil {
		return nil, err
	}
	historicalLabel, predictedLabel := seriesLabels(selectedStockLabel)
	return h.Assemble(*stitched, historicalLabel, predictedLabel, h.StyleHints)
}

func seriesLabels(selected string) (string, string) {
	if selected == "" {
		return "Historical Prices", "Predicted Prices"
	}
	return selected, selected + " (predicted)"
}

func valueRange(chart domain.StitchedChart) (float64, float64, error) {
	values := validValues(chart.HistoricalLine)
	values = append(values, validValues(chart.PredictedLine)...)

	lo, err := stats.Min(values)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute chart minimum: %w", err)
	}
	hi, err := stats.Max(values)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute chart maximum: %w", err)
	}
	return lo, hi, nil
}

func summarize(chart domain.StitchedChart) (*domain.ChartSummary, error) {
	connecting := chart.ConnectingIndex()
	if connecting < 0 {
		return nil, domain.ErrEmptyHistoricalSeries
	}
	lastPrice := chart.HistoricalLine[connecting].ValueOrZero()

	out := &domain.ChartSummary{
		LastHistoricalDate:  chart.Labels[connecting],
		LastHistoricalPrice: lastPrice,
		HorizonDays:         len(chart.Labels) - connecting - 1,
	}
	if out.HorizonDays == 0 {
		return out, nil
	}

	predicted := validValues(chart.PredictedLine[connecting+1:])
	mean, err := stats.Mean(predicted)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean predicted price: %w", err)
	}
	final := predicted[len(predicted)-1]

	out.FinalPredictedPrice = null.FloatFrom(final)
	out.MeanPredictedPrice = null.FloatFrom(mean)
	if lastPrice != 0 {
		changePct := decimal.NewFromFloat(final).
			Sub(decimal.NewFromFloat(lastPrice)).
			Div(decimal.NewFromFloat(lastPrice)).
			Mul(decimal.NewFromInt(100)).
			Round(4)
		out.PredictedChangePct = null.FloatFrom(changePct.InexactFloat64())
	}

	return out, nil
}

func validValues(in []null.Float) []float64 {
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if v.Valid {
			out = append(out, v.ValueOrZero())
		}
	}
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyFloats(in []null.Float) []null.Float {
	out := make([]null.Float, len(in))
	copy(out, in)
	return out
}
