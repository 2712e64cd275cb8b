package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"

	"stockforecast/api"
	"stockforecast/cmd"
	"stockforecast/internal/domain"
	"stockforecast/internal/logger"
	l1_service "stockforecast/internal/service/l1"
	"stockforecast/internal/util"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

type chartRow struct {
	Date       string `csv:"date"`
	Historical string `csv:"historical"`
	Predicted  string `csv:"predicted"`
}

type stockRow struct {
	Code string `csv:"code"`
	Name string `csv:"name"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stockforecast",
		Short:        "Query the forecasting backend and build prediction charts",
		SilenceUsage: true,
	}
	root.AddCommand(stocksCmd(), chartCmd(), extrapolateCmd(), retrainCmd())
	return root
}

func withHandler(fn func(ctx context.Context, handler *api.ApiHandler) error) error {
	handler, _, err := cmd.InitializeDependencies()
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	ctx := logger.WithLogger(context.Background(), handler.Logger)
	return fn(ctx, handler)
}

func stocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List stocks known to the forecasting backend as csv",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withHandler(func(ctx context.Context, handler *api.ApiHandler) error {
				stocks, err := handler.ForecastRepository.ListStocks(ctx)
				if err != nil {
					return err
				}
				rows := make([]stockRow, 0, len(stocks))
				for _, s := range stocks {
					rows = append(rows, stockRow{Code: s.Code, Name: s.Name})
				}
				return gocsv.Marshal(rows, c.OutOrStdout())
			})
		},
	}
}

func chartCmd() *cobra.Command {
	var (
		label   string
		asCsv   bool
		noTrain bool
	)
	command := &cobra.Command{
		Use:   "chart <code>",
		Short: "Train, predict and print the prediction chart for a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			code := args[0]
			if label == "" {
				label = code
			}
			return withHandler(func(ctx context.Context, handler *api.ApiHandler) error {
				if !noTrain {
					if err := handler.ForecastRepository.TrainModel(ctx, code); err != nil {
						logger.FromContext(ctx).Warnw("training failed, predicting with existing model", "code", code, "error", err)
					}
				}
				prediction, err := handler.ForecastRepository.Predict(ctx, code)
				if err != nil {
					return err
				}
				chart, err := handler.ChartService.BuildFromPrediction(*prediction, label)
				if err != nil {
					return err
				}
				if asCsv {
					return writeChartCsv(c.OutOrStdout(), *chart)
				}
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chart)
			})
		},
	}
	command.Flags().StringVar(&label, "label", "", "label for the historical series, defaults to the code")
	command.Flags().BoolVar(&asCsv, "csv", false, "print one csv row per date instead of json")
	command.Flags().BoolVar(&noTrain, "no-train", false, "skip training before predicting")
	return command
}

func writeChartCsv(w io.Writer, chart domain.ChartDescriptor) error {
	historical, _ := chart.SeriesByRole(domain.SeriesRoleHistorical)
	predicted, _ := chart.SeriesByRole(domain.SeriesRolePredicted)

	rows := make([]chartRow, len(chart.Labels))
	for i, date := range chart.Labels {
		rows[i].Date = date
		if i < len(historical.Values) && historical.Values[i].Valid {
			rows[i].Historical = strconv.FormatFloat(historical.Values[i].Float64, 'f', -1, 64)
		}
		if i < len(predicted.Values) && predicted.Values[i].Valid {
			rows[i].Predicted = strconv.FormatFloat(predicted.Values[i].Float64, 'f', -1, 64)
		}
	}
	return gocsv.Marshal(rows, w)
}

func extrapolateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extrapolate <last-date> <count>",
		Short: "Print count consecutive dates following last-date",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: count %q is not an integer", domain.ErrInvalidArgument, args[1])
			}
			cfg, err := util.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if count > cfg.Forecast.MaxHorizon {
				return fmt.Errorf("%w: count %d exceeds the maximum of %d", domain.ErrInvalidArgument, count, cfg.Forecast.MaxHorizon)
			}
			dates, err := l1_service.ExtrapolateDates(args[0], count)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(c.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the model of every listed stock once",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withHandler(func(ctx context.Context, handler *api.ApiHandler) error {
				n, err := handler.RetrainScheduler.RetrainAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "retrained %d stocks\n", n)
				return nil
			})
		},
	}
}
