package service

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Outcome is the result of a write, pushed to a caller-supplied address.
// Message and Error are mutually exclusive.
type Outcome struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CallbackDispatcher delivers write outcomes to callback addresses.
// Delivery is best-effort, at-most-once: a failed POST is logged and never
// surfaces to the request that triggered it. No retry, no queue.
type CallbackDispatcher struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewCallbackDispatcher(logger *zap.Logger) *CallbackDispatcher {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &CallbackDispatcher{
		httpClient: client,
		logger:     logger,
	}
}

// Deliver posts the outcome to url and reports delivery failure to the log
// only. Returns whether the delivery was accepted, for tests.
func (d *CallbackDispatcher) Deliver(url string, outcome Outcome) bool {
	resp, err := d.httpClient.R().
		SetBody(outcome).
		Post(url)
	if err != nil {
		d.logger.Warn("callback delivery failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return false
	}
	if resp.StatusCode() >= 400 {
		d.logger.Warn("callback delivery rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return false
	}
	return true
}

// DispatchAsync detaches delivery from the caller's response path. The
// primary response never waits on it.
func (d *CallbackDispatcher) DispatchAsync(url string, outcome Outcome) {
	go d.Deliver(url, outcome)
}
