package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to the model-serving backend that lists stocks, serves
// historical prices, trains models and returns predictions.
type Client struct {
	HttpClient *http.Client
	BaseURL    string
}

func NewClient(httpClient *http.Client, baseURL string) Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return Client{
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type StockResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type StockInfoResponse struct {
	Name string `json:"name"`
}

type HistoricalResponse struct {
	Symbol string    `json:"symbol"`
	Labels []string  `json:"labels"`
	Prices []float64 `json:"prices"`
}

type TrainResponse struct {
	Message string `json:"message"`
}

type PredictResponse struct {
	Symbol           string    `json:"symbol"`
	HistoricalPrices []float64 `json:"historical_prices"`
	HistoricalDates  []string  `json:"historical_dates"`
	PredictedPrices  []float64 `json:"predicted_prices"`
	PredictedDates   []string  `json:"predicted_dates,omitempty"`
}

// StatusError is returned for any non-2xx response. Message is taken from
// the body's "message" or "error" field when present.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s failed with status code %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (c Client) ListStocks(ctx context.Context) ([]StockResponse, error) {
	out := []StockResponse{}
	if err := c.do(ctx, http.MethodGet, "/stocks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) GetStockInfo(ctx context.Context, code string) (*StockInfoResponse, error) {
	out := &StockInfoResponse{}
	if err := c.do(ctx, http.MethodGet, "/stock/"+url.PathEscape(code), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) GetHistorical(ctx context.Context, code string) (*HistoricalResponse, error) {
	out := &HistoricalResponse{}
	if err := c.do(ctx, http.MethodGet, "/stocks/"+url.PathEscape(code), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) TrainModel(ctx context.Context, code string) (*TrainResponse, error) {
	out := &TrainResponse{}
	if err := c.do(ctx, http.MethodPost, "/train/"+url.PathEscape(code), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) Predict(ctx context.Context, code string) (*PredictResponse, error) {
	out := &PredictResponse{}
	if err := c.do(ctx, http.MethodGet, "/stocks/"+url.PathEscape(code)+"/predict", out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Client) do(ctx context.Context, method, path string, out interface{}) error {
	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	response, err := c.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return StatusError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Message:    errorMessage(responseBytes),
		}
	}

	if len(bytes.TrimSpace(responseBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBytes, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}

func errorMessage(body []byte) string {
	type errResponse struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	errJson := errResponse{}
	if err := json.Unmarshal(body, &errJson); err != nil {
		return strings.TrimSpace(string(body))
	}
	if errJson.Message != "" {
		return errJson.Message
	}
	return errJson.Error
}
