package integration_tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

type priceRow struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Name   string  `csv:"name"`
	Price  float64 `csv:"price"`
}

type fakeStock struct {
	name   string
	dates  []string
	prices []float64
}

// FakeForecastBackend serves the model backend routes from a csv fixture.
type FakeForecastBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	stocks    map[string]*fakeStock
	predicted map[string][]float64
	trained   map[string]int
	failTrain map[string]bool
	gates     map[string]chan struct{}
}

func loadPriceRows(path string) ([]priceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []priceRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

func NewFakeForecastBackend(fixturePath string, predicted map[string][]float64) (*FakeForecastBackend, error) {
	rows, err := loadPriceRows(fixturePath)
	if err != nil {
		return nil, err
	}

	stocks := map[string]*fakeStock{}
	for _, row := range rows {
		s, ok := stocks[row.Symbol]
		if !ok {
			s = &fakeStock{name: row.Name}
			stocks[row.Symbol] = s
		}
		s.dates = append(s.dates, row.Date)
		s.prices = append(s.prices, row.Price)
	}

	b := &FakeForecastBackend{
		stocks:    stocks,
		predicted: predicted,
		trained:   map[string]int{},
		failTrain: map[string]bool{},
		gates:     map[string]chan struct{}{},
	}
	b.Server = httptest.NewServer(b.router())
	return b, nil
}

func (b *FakeForecastBackend) Close() {
	b.Server.Close()
}

func (b *FakeForecastBackend) URL() string {
	return b.Server.URL
}

// FailTraining makes every train call for code return a 500.
func (b *FakeForecastBackend) FailTraining(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failTrain[code] = true
}

// HoldPredictions blocks predict calls for code until the returned func is
// called.
func (b *FakeForecastBackend) HoldPredictions(code string) func() {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gates[code] = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (b *FakeForecastBackend) TrainCount(code string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trained[code]
}

func (b *FakeForecastBackend) router() *gin.Engine {
	router := gin.New()

	router.GET("/stocks", func(c *gin.Context) {
		codes := make([]string, 0, len(b.stocks))
		for code := range b.stocks {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		out := []gin.H{}
		for _, code := range codes {
			out = append(out, gin.H{"code": code, "name": code})
		}
		c.JSON(http.StatusOK, out)
	})

	router.GET("/stock/:code", func(c *gin.Context) {
		s, ok := b.stocks[c.Param("code")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown stock"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": s.name})
	})

	router.GET("/stocks/:code", func(c *gin.Context) {
		code := c.Param("code")
		s, ok := b.stocks[code]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown stock"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"symbol": code,
			"labels": s.dates,
			"prices": s.prices,
		})
	})

	router.POST("/train/:code", func(c *gin.Context) {
		code := c.Param("code")
		b.mu.Lock()
		fail := b.failTrain[code]
		if !fail {
			b.trained[code]++
		}
		b.mu.Unlock()

		if fail {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "training diverged"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Model trained successfully for " + code})
	})

	router.GET("/stocks/:code/predict", func(c *gin.Context) {
		code := c.Param("code")
		s, ok := b.stocks[code]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "unknown stock"})
			return
		}

		b.mu.Lock()
		gate := b.gates[code]
		b.mu.Unlock()
		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"symbol":            code,
			"historical_dates":  s.dates,
			"historical_prices": s.prices,
			"predicted_prices":  b.predicted[code],
		})
	})

	return router
}
