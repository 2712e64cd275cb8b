package l1_service

import (
	"fmt"
	"math"

	"stockforecast/internal/domain"

	"github.com/guregu/null/v6"
)

// StitchSeries puts a historical series and a dateless prediction on one
// date axis. The predicted line starts at the last historical point so the
// two lines touch at exactly one index.
func StitchSeries(historical domain.HistoricalSeries, predicted []float64) (*domain.StitchedChart, error) {
	last, ok := historical.Last()
	if !ok {
		return nil, domain.ErrEmptyHistoricalSeries
	}
	if err := historical.Validate(); err != nil {
		return nil, err
	}
	for i, p := range predicted {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: non-finite predicted price at index %d", domain.ErrInvalidArgument, i)
		}
	}

	historicalPrices := historical.Prices()
	historicalDates := historical.Dates()

	predictedDates, err := ExtrapolateFrom(last.Date, len(predicted))
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(historicalDates)+len(predictedDates))
	labels = append(labels, historicalDates...)
	labels = append(labels, predictedDates...)

	historicalLine := make([]null.Float, 0, len(labels))
	for _, p := range historicalPrices {
		historicalLine = append(historicalLine, null.FloatFrom(p))
	}
	historicalLine = append(historicalLine, nulls(len(predicted))...)

	connectedPredicted := make([]null.Float, 0, len(predicted)+1)
	connectedPredicted = append(connectedPredicted, null.FloatFrom(last.Price))
	for _, p := range predicted {
		connectedPredicted = append(connectedPredicted, null.FloatFrom(p))
	}

	predictedLine := make([]null.Float, 0, len(labels))
	predictedLine = append(predictedLine, nulls(len(historicalPrices)-1)...)
	predictedLine = append(predictedLine, connectedPredicted...)

	if len(labels) != len(historicalLine) || len(labels) != len(predictedLine) {
		return nil, fmt.Errorf(
			"%w: stitched lengths differ (labels=%d historical=%d predicted=%d)",
			domain.ErrInternalInconsistency,
			len(labels),
			len(historicalLine),
			len(predictedLine),
		)
	}

	return &domain.StitchedChart{
		Labels:         labels,
		HistoricalLine: historicalLine,
		PredictedLine:  predictedLine,
	}, nil
}

func nulls(n int) []null.Float {
	if n <= 0 {
		return nil
	}
	return make([]null.Float, n)
}
