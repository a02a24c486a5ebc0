package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/domain"
)

// HealthStatus mirrors the data tier's ?api=health payload.
type HealthStatus struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
	Timestamp   string `json:"timestamp"`
}

// ListingClient is the presentation tier's read path into the data tier.
// Every failure mode (timeout, refused connection, non-2xx, bad payload)
// degrades to an empty listing; the page renders a "tier unavailable" state
// instead of crashing.
type ListingClient struct {
	httpClient *resty.Client
	endpoint   string
	logger     *zap.Logger
}

func NewListingClient(endpoint string, logger *zap.Logger) *ListingClient {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &ListingClient{
		httpClient: client,
		endpoint:   endpoint,
		logger:     logger,
	}
}

// FetchAll returns every property, newest first, or an empty slice when the
// data tier is unreachable.
func (c *ListingClient) FetchAll(ctx context.Context) []domain.Property {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("api", "properties").
		Get("/")
	if err != nil {
		c.logger.Warn("failed to fetch properties", zap.String("endpoint", c.endpoint), zap.Error(err))
		return []domain.Property{}
	}
	if resp.StatusCode() != 200 {
		c.logger.Warn("property fetch returned non-200",
			zap.String("endpoint", c.endpoint),
			zap.Int("status", resp.StatusCode()),
		)
		return []domain.Property{}
	}
	var properties []domain.Property
	if err := json.Unmarshal(resp.Body(), &properties); err != nil {
		c.logger.Warn("invalid properties payload", zap.Error(err))
		return []domain.Property{}
	}
	if properties == nil {
		properties = []domain.Property{}
	}
	return properties
}

// Healthy probes the data tier's health endpoint.
func (c *ListingClient) Healthy(ctx context.Context) bool {
	var health HealthStatus
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("api", "health").
		SetResult(&health).
		Get("/")
	if err != nil || resp.StatusCode() != 200 {
		return false
	}
	return health.Status == "healthy"
}
