package notifier

import (
	"AuthTokens_Service/internal/clock"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const EventRenewalTokenReplay = "renewal_token_replay"

type WebhookNotify struct {
	UserID     string `json:"user_id"`
	Event      string `json:"event"`
	TimeStamp  string `json:"timestamp"`
	RemoteAddr string `json:"remote_addr"`
}

// NotifyWebhook POSTs payload as JSON and fails on any non-2xx answer.
func NotifyWebhook(ctx context.Context, client *http.Client, webhookURL string, payload *WebhookNotify) error {
	const op = "notifier.NotifyWebhook"

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %d", op, response.StatusCode)
	}

	return nil
}

// WebhookNotifier delivers security events in the background. Delivery
// failures are logged and never reach the caller.
type WebhookNotifier struct {
	url     string
	timeout time.Duration
	client  *http.Client
	clock   clock.Clock
	logger  *slog.Logger

	wg sync.WaitGroup
}

func NewWebhookNotifier(url string, timeout time.Duration, clk clock.Clock, logger *slog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookNotifier{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		clock:   clk,
		logger:  logger,
	}
}

// RenewalReplay reports a validly signed renewal token that is no longer the
// user's current binding. It returns immediately.
func (notifier *WebhookNotifier) RenewalReplay(_ context.Context, userID string, remoteAddr string) {
	if notifier.url == "" {
		return
	}

	payload := &WebhookNotify{
		UserID:     userID,
		Event:      EventRenewalTokenReplay,
		TimeStamp:  notifier.clock.Now().UTC().Format(time.RFC3339),
		RemoteAddr: remoteAddr,
	}

	notifier.wg.Add(1)
	go func() {
		defer notifier.wg.Done()

		// detached from the request, which is already answered
		ctx, cancel := context.WithTimeout(context.Background(), notifier.timeout)
		defer cancel()

		if err := NotifyWebhook(ctx, notifier.client, notifier.url, payload); err != nil {
			notifier.logger.Warn("webhook_failed", "event", payload.Event, "user_id", userID, "err", err)
			return
		}
		notifier.logger.Info("webhook_sent", "event", payload.Event, "user_id", userID)
	}()
}

// Close waits for in-flight deliveries and drops idle connections.
func (notifier *WebhookNotifier) Close() {
	notifier.wg.Wait()
	notifier.client.CloseIdleConnections()
}
