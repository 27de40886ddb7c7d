package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/ports"
	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

const defaultPushRetries = 3
const defaultPushRetryDelay = 200 * time.Millisecond
const defaultPushTimeout = 30 * time.Second
const maxPushRetryDelay = 2 * time.Second

// ManifestPushHTTPAdapter uploads the manifest as JSON with PUT.
type ManifestPushHTTPAdapter struct {
	Endpoint   string
	Token      string
	DeviceID   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

type manifestPayload struct {
	Device string                `json:"device,omitempty"`
	Skills []types.ManifestEntry `json:"skills"`
}

func NewManifestPushHTTPAdapter(endpoint string, token string, deviceID string, timeoutSec int, retries int, retryDelayMs int) ManifestPushHTTPAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	if retries <= 0 {
		retries = defaultPushRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultPushRetryDelay
	}
	return ManifestPushHTTPAdapter{
		Endpoint:   endpoint,
		Token:      token,
		DeviceID:   deviceID,
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: retryDelay,
	}
}

func (a ManifestPushHTTPAdapter) Push(ctx context.Context, manifest types.Manifest) error {
	endpoint := strings.TrimSpace(a.Endpoint)
	if endpoint == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("push endpoint is empty")
	}
	body, err := json.Marshal(manifestPayload{Device: a.DeviceID, Skills: manifest.Entries()})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	retries := a.Retries
	if retries <= 0 {
		retries = 1
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		retry, err := a.pushOnce(ctx, endpoint, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.retryDelay(attempt)):
		}
	}
	return lastErr
}

func (a ManifestPushHTTPAdapter) pushOnce(ctx context.Context, endpoint string, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create push request").
			WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := strings.TrimSpace(a.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: a.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("manifest push failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	data, _ := io.ReadAll(resp.Body)
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return retry, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("manifest push failed").
		WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, endpoint, strings.TrimSpace(string(data))))
}

func (a ManifestPushHTTPAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxPushRetryDelay {
		delay = maxPushRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

// ManifestPushNoopAdapter is used when uploading is disabled or the device
// is not paired.
type ManifestPushNoopAdapter struct{}

func (ManifestPushNoopAdapter) Push(context.Context, types.Manifest) error {
	return nil
}

var _ ports.ManifestPushPort = ManifestPushHTTPAdapter{}
var _ ports.ManifestPushPort = ManifestPushNoopAdapter{}
