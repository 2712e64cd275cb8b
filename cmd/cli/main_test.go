package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"stockforecast/internal/domain"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"
)

func TestExtrapolateCmd(t *testing.T) {
	t.Run("prints one date per line", func(t *testing.T) {
		out := &bytes.Buffer{}
		command := extrapolateCmd()
		command.SetOut(out)
		command.SetArgs([]string{"2024-02-28", "3"})

		require.NoError(t, command.Execute())
		require.Equal(t, "2024-02-29\n2024-03-01\n2024-03-02\n", out.String())
	})

	t.Run("count above the configured horizon", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("forecast:\n  max_horizon: 5\n"), 0o600))
		t.Setenv("STOCKFORECAST_CONFIG", configPath)

		command := extrapolateCmd()
		command.SetOut(&bytes.Buffer{})
		command.SetErr(&bytes.Buffer{})
		command.SetArgs([]string{"2024-02-28", "6"})

		err := command.Execute()
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		require.ErrorContains(t, err, "exceeds the maximum of 5")
	})

	t.Run("count must be an integer", func(t *testing.T) {
		command := extrapolateCmd()
		command.SetOut(&bytes.Buffer{})
		command.SetErr(&bytes.Buffer{})
		command.SetArgs([]string{"2024-02-28", "three"})

		err := command.Execute()
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestWriteChartCsv(t *testing.T) {
	chart := domain.ChartDescriptor{
		Labels: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		Series: []domain.ChartSeries{
			{
				Name:   "AAPL",
				Role:   domain.SeriesRoleHistorical,
				Values: []null.Float{null.FloatFrom(100), null.FloatFrom(102), {}},
			},
			{
				Name:   "AAPL (predicted)",
				Role:   domain.SeriesRolePredicted,
				Values: []null.Float{{}, null.FloatFrom(102), null.FloatFrom(105.5)},
			},
		},
	}

	out := &bytes.Buffer{}
	require.NoError(t, writeChartCsv(out, chart))
	require.Equal(t,
		"date,historical,predicted\n"+
			"2024-01-01,100,\n"+
			"2024-01-02,102,102\n"+
			"2024-01-03,,105.5\n",
		out.String(),
	)
}
