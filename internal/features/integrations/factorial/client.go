package factorial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"timebridge/internal/util/app_errors"

	"github.com/sony/gobreaker"
)

const (
	serviceName = "factorial"

	employeesPath = "/api/2025-01-01/resources/employees/employees"
	shiftsPath    = "/api/2025-01-01/resources/attendance/shifts"
	projectsPath  = "/api/2025-01-01/resources/project_management/projects"

	requestTimeout  = 30 * time.Second
	maxErrorBodyLen = 2048
)

// Client reads from the Factorial HR API. Every call goes through a circuit
// breaker; nothing is retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "factorial-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// a rejected key or a bad request says nothing about the remote's health
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}

			var externalErr *app_errors.ExternalServiceError
			return errors.As(err, &externalErr) && externalErr.StatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    breaker,
		logger:     logger,
	}
}

func (c *Client) FetchEmployees(ctx context.Context, apiKey string) ([]Employee, error) {
	return fetchList[Employee](ctx, c, employeesPath, apiKey)
}

func (c *Client) FetchProjects(ctx context.Context, apiKey string) ([]Project, error) {
	return fetchList[Project](ctx, c, projectsPath, apiKey)
}

func (c *Client) FetchShifts(ctx context.Context, apiKey string) ([]Shift, error) {
	return fetchList[Shift](ctx, c, shiftsPath, apiKey)
}

// fetchList decodes each element on its own so one malformed record does not
// sink the whole page.
func fetchList[T any](ctx context.Context, c *Client, path, apiKey string) ([]T, error) {
	body, err := c.get(ctx, path, apiKey)
	if err != nil {
		return nil, err
	}

	raw := decodeList(body, c.logger.With("path", path))

	items := make([]T, 0, len(raw))
	for i, element := range raw {
		var item T
		if err := json.Unmarshal(element, &item); err != nil {
			c.logger.Warn("Skipping malformed record", "path", path, "index", i, "error", err)
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

func (c *Client) get(ctx context.Context, path, apiKey string) ([]byte, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &app_errors.ConfigurationError{
			Message: "Factorial API key is not configured, set it in the integration settings",
		}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}

		request.Header.Set("Accept", "application/json")
		request.Header.Set("x-api-key", apiKey)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("failed to call %s: %w", path, err)
		}
		defer func() { _ = response.Body.Close() }()

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", path, err)
		}

		if response.StatusCode < 200 || response.StatusCode >= 300 {
			if len(body) > maxErrorBodyLen {
				body = body[:maxErrorBodyLen]
			}

			return nil, &app_errors.ExternalServiceError{
				Service:    serviceName,
				StatusCode: response.StatusCode,
				Body:       string(body),
			}
		}

		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &app_errors.ExternalServiceError{
				Service:    serviceName,
				StatusCode: http.StatusServiceUnavailable,
				Body:       err.Error(),
			}
		}

		return nil, err
	}

	return result.([]byte), nil
}

// decodeList accepts a bare JSON array or an object wrapping the array in
// "data". Anything else yields an empty list.
func decodeList(body []byte, logger *slog.Logger) []json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data
	}

	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200]
	}
	logger.Warn("Unexpected response structure, treating as empty", "body", preview)

	return []json.RawMessage{}
}
