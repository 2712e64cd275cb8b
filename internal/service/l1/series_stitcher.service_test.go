package l1_service

import (
	"math"
	"testing"

	"stockforecast/internal/domain"
	"stockforecast/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"
)

func series(t *testing.T, dates []string, prices []float64) domain.HistoricalSeries {
	t.Helper()
	s, err := domain.NewHistoricalSeries("TEST", dates, prices)
	require.NoError(t, err)
	return *s
}

func floats(values ...any) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = null.FloatFrom(v.(float64))
		}
	}
	return out
}

func TestStitchSeries(t *testing.T) {
	t.Run("two historical two predicted", func(t *testing.T) {
		historical := series(t,
			[]string{"2024-01-01", "2024-01-02"},
			[]float64{100, 102},
		)

		out, err := StitchSeries(historical, []float64{105, 107})
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(
			domain.StitchedChart{
				Labels:         []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
				HistoricalLine: floats(100.0, 102.0, nil, nil),
				PredictedLine:  floats(nil, 102.0, 105.0, 107.0),
			},
			*out,
		))
		require.Equal(t, 1, out.ConnectingIndex())
	})

	t.Run("empty prediction", func(t *testing.T) {
		historical := series(t,
			[]string{"2024-01-01", "2024-01-02", "2024-01-03"},
			[]float64{100, 101, 99.5},
		)

		out, err := StitchSeries(historical, nil)
		require.NoError(t, err)

		require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, out.Labels)
		require.Equal(t, floats(100.0, 101.0, 99.5), out.HistoricalLine)
		require.Equal(t, floats(nil, nil, 99.5), out.PredictedLine)
	})

	t.Run("single historical point", func(t *testing.T) {
		historical := series(t, []string{"2024-01-05"}, []float64{50})

		out, err := StitchSeries(historical, []float64{51})
		require.NoError(t, err)

		require.Equal(t, []string{"2024-01-05", "2024-01-06"}, out.Labels)
		require.Equal(t, floats(50.0, nil), out.HistoricalLine)
		require.Equal(t, floats(50.0, 51.0), out.PredictedLine)
	})

	t.Run("trading day gaps stay in history", func(t *testing.T) {
		// friday then monday; prediction continues on calendar days
		historical := series(t,
			[]string{"2024-01-05", "2024-01-08"},
			[]float64{10, 11},
		)

		out, err := StitchSeries(historical, []float64{12, 13})
		require.NoError(t, err)
		require.Equal(t, []string{"2024-01-05", "2024-01-08", "2024-01-09", "2024-01-10"}, out.Labels)
	})

	t.Run("empty historical", func(t *testing.T) {
		out, err := StitchSeries(domain.HistoricalSeries{}, []float64{1, 2})
		require.ErrorIs(t, err, domain.ErrEmptyHistoricalSeries)
		require.Nil(t, out)
	})

	t.Run("unordered historical", func(t *testing.T) {
		historical := domain.HistoricalSeries{
			Points: []domain.PricePoint{
				{Date: util.NewDate(2024, 1, 2), Price: 1},
				{Date: util.NewDate(2024, 1, 2), Price: 2},
			},
		}
		out, err := StitchSeries(historical, []float64{3})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Nil(t, out)
	})

	t.Run("non finite prediction", func(t *testing.T) {
		historical := series(t, []string{"2024-01-01"}, []float64{1})
		out, err := StitchSeries(historical, []float64{2, math.NaN()})
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.Nil(t, out)
	})
}

func TestStitchSeries_properties(t *testing.T) {
	start := util.NewDate(2023, 6, 1)
	for numHistorical := 1; numHistorical <= 12; numHistorical++ {
		for numPredicted := 0; numPredicted <= 9; numPredicted++ {
			points := make([]domain.PricePoint, numHistorical)
			for i := range points {
				points[i] = domain.PricePoint{
					Date:  start.AddDate(0, 0, 2*i),
					Price: 100 + float64(i),
				}
			}
			historical := domain.HistoricalSeries{Symbol: "PROP", Points: points}
			predicted := make([]float64, numPredicted)
			for i := range predicted {
				predicted[i] = 200 + float64(i)
			}

			out, err := StitchSeries(historical, predicted)
			require.NoError(t, err)

			total := numHistorical + numPredicted
			require.Len(t, out.Labels, total)
			require.Len(t, out.HistoricalLine, total)
			require.Len(t, out.PredictedLine, total)

			for i := 1; i < total; i++ {
				require.Less(t, out.Labels[i-1], out.Labels[i])
			}

			connecting := numHistorical - 1
			for i := 0; i < total; i++ {
				if i < numHistorical {
					require.True(t, out.HistoricalLine[i].Valid)
					require.Equal(t, points[i].Price, out.HistoricalLine[i].ValueOrZero())
				} else {
					require.False(t, out.HistoricalLine[i].Valid)
				}
				if i < connecting {
					require.False(t, out.PredictedLine[i].Valid)
				} else {
					require.True(t, out.PredictedLine[i].Valid)
				}
				bothSet := out.HistoricalLine[i].Valid && out.PredictedLine[i].Valid
				require.Equal(t, i == connecting, bothSet)
			}
			require.Equal(t, out.HistoricalLine[connecting], out.PredictedLine[connecting])

			again, err := StitchSeries(historical, predicted)
			require.NoError(t, err)
			require.Equal(t, "", cmp.Diff(out, again))
		}
	}
}
