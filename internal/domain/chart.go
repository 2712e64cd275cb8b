package domain

import (
	"github.com/guregu/null/v6"
)

// StitchedChart aligns a historical line and a predicted line on one date
// axis. Both lines have the same length as Labels and only overlap at the
// connecting index, where both hold the last historical price.
type StitchedChart struct {
	Labels         []string
	HistoricalLine []null.Float
	PredictedLine  []null.Float
}

// ConnectingIndex is the last historical index, -1 for an empty chart.
func (c StitchedChart) ConnectingIndex() int {
	n := 0
	for _, v := range c.HistoricalLine {
		if v.Valid {
			n++
		}
	}
	return n - 1
}

type SeriesRole string

const (
	SeriesRoleHistorical SeriesRole = "historical"
	SeriesRolePredicted  SeriesRole = "predicted"
)

type ChartSeries struct {
	Name   string       `json:"name"`
	Values []null.Float `json:"values"`
	Role   SeriesRole   `json:"role"`
}

// StyleHints are cosmetic renderer options. They never change data shape.
type StyleHints struct {
	TimeUnit   string `json:"timeUnit" yaml:"time_unit"`
	DateFormat string `json:"dateFormat" yaml:"date_format"`
	XAxisTitle string `json:"xAxisTitle" yaml:"x_axis_title"`
	YAxisTitle string `json:"yAxisTitle" yaml:"y_axis_title"`
}

type AxisHints struct {
	TimeUnit     string     `json:"timeUnit"`
	DateFormat   string     `json:"dateFormat"`
	XAxisTitle   string     `json:"xAxisTitle"`
	YAxisTitle   string     `json:"yAxisTitle"`
	SuggestedMin null.Float `json:"suggestedMin"`
	SuggestedMax null.Float `json:"suggestedMax"`
}

type ChartSummary struct {
	LastHistoricalDate  string     `json:"lastHistoricalDate"`
	LastHistoricalPrice float64    `json:"lastHistoricalPrice"`
	FinalPredictedPrice null.Float `json:"finalPredictedPrice"`
	MeanPredictedPrice  null.Float `json:"meanPredictedPrice"`
	PredictedChangePct  null.Float `json:"predictedChangePct"`
	HorizonDays         int        `json:"horizonDays"`
}

// ChartDescriptor is the renderer-agnostic chart handed to the presentation
// layer. It is built fresh per request and never mutated afterwards.
type ChartDescriptor struct {
	Labels    []string      `json:"labels"`
	Series    []ChartSeries `json:"series"`
	AxisHints AxisHints     `json:"axisHints"`
	Summary   ChartSummary  `json:"summary"`
}

func (c ChartDescriptor) SeriesByRole(role SeriesRole) (ChartSeries, bool) {
	for _, s := range c.Series {
		if s.Role == role {
			return s, true
		}
	}
	return ChartSeries{}, false
}
