// Package dashboard is an HTTP client for the herdboard API.
package dashboard

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdboard/internal/domain/models"
)

// Client exposes the herdboard operations used by farmctl.
type Client interface {
	ListAnimals(ctx context.Context) ([]models.Animal, error)
	Stats(ctx context.Context) (*models.FarmStats, error)
	DownloadExport(ctx context.Context) (*Export, error)
	ExportToSheets(ctx context.Context) (int, error)
	ClearCache(ctx context.Context) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// Export is a downloaded CSV document.
type Export struct {
	Filename string
	Body     []byte
}

// apiError mirrors the error body returned by the server.
type apiError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func (c *APIClient) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	var animals []models.Animal
	if err := c.getJSON(ctx, "/animals", &animals); err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	return animals, nil
}

func (c *APIClient) Stats(ctx context.Context) (*models.FarmStats, error) {
	stats := new(models.FarmStats)
	if err := c.getJSON(ctx, "/stats", stats); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// DownloadExport fetches the CSV export of the current herd.
func (c *APIClient) DownloadExport(ctx context.Context) (*Export, error) {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv").
		SetError(apiErr).
		Get("/export")
	if err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}

	filename := "farm-dashboard-export.csv"
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return &Export{Filename: filename, Body: resp.Body()}, nil
}

// ExportToSheets asks the server to push the export into its Google Sheet and
// returns the number of rows written.
func (c *APIClient) ExportToSheets(ctx context.Context) (int, error) {
	result := new(struct {
		Rows int `json:"rows"`
	})
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Post("/export/sheets")
	if err != nil {
		return 0, fmt.Errorf("export to sheets: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return 0, fmt.Errorf("export to sheets: %w", err)
	}
	return result.Rows, nil
}

func (c *APIClient) ClearCache(ctx context.Context) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Delete("/cache")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, dst any) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(dst).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return err
	}
	return checkResponse(resp, apiErr)
}

func checkResponse(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	message := apiErr.Error
	if len(apiErr.Errors) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(apiErr.Errors, "; "))
	}
	return fmt.Errorf("herdboard api error: code=%d, message=%s", resp.StatusCode(), message)
}
