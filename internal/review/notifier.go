package review

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// Outcome is the classified result of one outbound webhook call. It is a
// value, never an error: a failed delivery is data, recorded against the
// list it was addressed to.
type Outcome struct {
	// Status is the HTTP status of the response, or -1 when the call never
	// produced one (transport failure, refused URL).
	Status int `json:"status"`
	// Msg is set only on failure outcomes and explains the classification.
	Msg string `json:"msg,omitempty"`
	// Data is the parsed JSON response body, or the raw body text when the
	// response was not JSON or failed to parse.
	Data any `json:"data"`
	// Exc carries the underlying error detail, if any.
	Exc string `json:"exc,omitempty"`
	// SentData echoes the payload that was (or would have been) sent, so
	// list operators can debug their handlers from the audit trail.
	SentData map[string]any `json:"sent_data"`
}

// Delivered reports whether the call reached the list and returned a 2xx.
func (o Outcome) Delivered() bool {
	return o.Msg == "" && o.Status >= 200 && o.Status < 300
}

// Notifier performs a single outbound webhook call. Implementations never
// return errors; every failure mode is folded into the Outcome.
type Notifier interface {
	Call(ctx context.Context, url, key string, payload map[string]any) Outcome
}

// HTTPNotifier is the production Notifier. It posts the payload as JSON
// with the list's shared secret as the Authorization credential, enforces
// a bounded per-call timeout, and refuses non-HTTPS callback URLs without
// attempting them.
type HTTPNotifier struct {
	client    *http.Client
	userAgent string
}

// NewHTTPNotifier returns an HTTPNotifier with the given per-call timeout
// and User-Agent. A zero timeout defaults to 30 seconds.
func NewHTTPNotifier(timeout time.Duration, userAgent string) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPNotifier{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// maxResponseBody bounds how much of a list's response is read; callbacks
// are expected to answer with small JSON documents.
const maxResponseBody = 1 << 20

// Call implements Notifier.
func (n *HTTPNotifier) Call(ctx context.Context, url, key string, payload map[string]any) Outcome {
	if !strings.HasPrefix(url, "https://") {
		return Outcome{
			Status:   -1,
			Msg:      "Refusing callback URL without https",
			Exc:      "insecure or missing callback URL: " + url,
			SentData: payload,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Status: -1, Msg: "Failed to encode payload", Exc: err.Error(), SentData: payload}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: -1, Msg: "Failed to build request", Exc: err.Error(), SentData: payload}
	}
	req.Header.Set("Authorization", key)
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Outcome{Status: -1, Msg: "Failed to make request", Exc: err.Error(), SentData: payload}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Outcome{
			Status:   resp.StatusCode,
			Msg:      "Failed to read response",
			Exc:      err.Error(),
			SentData: payload,
		}
	}

	text := string(raw)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return Outcome{
				Status:   resp.StatusCode,
				Msg:      "JSON deserialisation failed",
				Data:     text,
				Exc:      err.Error(),
				SentData: payload,
			}
		}
		return Outcome{Status: resp.StatusCode, Data: parsed, SentData: payload}
	}

	return Outcome{Status: resp.StatusCode, Data: text, SentData: payload}
}
