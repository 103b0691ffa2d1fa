// Package client is a small programmatic API client, used by CLI tools
// and smoke tests against a running instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mlukic/planka/internal/middleware"
	"github.com/mlukic/planka/internal/plans"
	"github.com/mlukic/planka/internal/workouts"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	maxAttempts int
	retryDelay  time.Duration
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	respBody, err := c.do(ctx, "POST", "/a/login", body, http.StatusOK)
	if err != nil {
		return err
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return fmt.Errorf("unmarshal login response: %w", err)
	}
	c.token = loginResp.Token

	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, "GET", "/a/logout", nil, http.StatusOK); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) GetPlan(ctx context.Context) (*plans.Plan, error) {
	respBody, err := c.do(ctx, "GET", "/plan", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Source plans.Source `json:"source"`
		Plan   *plans.Plan  `json:"plan"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal plan response: %w", err)
	}
	return resp.Plan, nil
}

func (c *Client) Today(ctx context.Context) (*plans.ResolvedDay, error) {
	respBody, err := c.do(ctx, "GET", "/plan/today", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resolved plans.ResolvedDay
	if err := json.Unmarshal(respBody, &resolved); err != nil {
		return nil, fmt.Errorf("unmarshal today response: %w", err)
	}
	return &resolved, nil
}

func (c *Client) UploadPlan(ctx context.Context, plan plans.Plan) (*plans.Plan, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, "POST", "/plan", body, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var stored plans.Plan
	if err := json.Unmarshal(respBody, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal upload plan response: %w", err)
	}
	return &stored, nil
}

// CompleteWorkout logs a completion. An idempotency key is attached
// when the caller did not set one, so a retried request cannot produce
// a duplicate entry.
func (c *Client) CompleteWorkout(ctx context.Context, cw workouts.CompletedWorkout) (*workouts.CompletedWorkout, error) {
	if cw.IdempotencyKey == "" {
		cw.IdempotencyKey = uuid.NewString()
	}

	body, err := json.Marshal(cw)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, "POST", "/workouts", body, http.StatusCreated, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var stored workouts.CompletedWorkout
	if err := json.Unmarshal(respBody, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal complete workout response: %w", err)
	}
	return &stored, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]workouts.CompletedWorkout, error) {
	path := "/workouts/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	respBody, err := c.do(ctx, "GET", path, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var history []workouts.CompletedWorkout
	if err := json.Unmarshal(respBody, &history); err != nil {
		return nil, fmt.Errorf("unmarshal history response: %w", err)
	}
	return history, nil
}

func (c *Client) DeleteWorkout(ctx context.Context, id int) error {
	_, err := c.do(ctx, "DELETE", "/workouts/"+strconv.Itoa(id), nil, http.StatusOK)
	return err
}

// do sends the request, retrying on network errors and 5xx responses
// with a fixed delay between attempts. Anything else is returned to the
// caller right away.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	body []byte,
	expectedStatuses ...int,
) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			log.Tracef("request %s %s, attempt %d", method, path, attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		respBody, retryable, err := c.doOnce(ctx, method, path, body, expectedStatuses)
		if err == nil {
			return respBody, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%s %s failed after %d attempts: %w", method, path, c.maxAttempts, lastErr)
}

func (c *Client) doOnce(
	ctx context.Context,
	method, path string,
	body []byte,
	expectedStatuses []int,
) (_ []byte, retryable bool, err error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Planka/1.0")
	if c.token != "" {
		req.Header.Set(middleware.AuthTokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warnf("close response body: %s", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	for _, status := range expectedStatuses {
		if resp.StatusCode == status {
			return respBody, false, nil
		}
	}

	err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	return nil, resp.StatusCode >= http.StatusInternalServerError, err
}
