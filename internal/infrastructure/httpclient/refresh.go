package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/infrastructure/metrics"
)

const (
	refreshPath = "/auth/refresh"
	refreshKey  = "refresh"
)

var errMissingAccessToken = errors.New("refresh response has no access_token")

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	if !c.shared {
		return c.doRefresh(ctx)
	}
	// The shared exchange outlives any one caller; each waiter gives up on
	// its own context only.
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return c.doRefresh(rctx)
	})
	select {
	case <-ctx.Done():
		metrics.TokenRefreshTotal.WithLabelValues("aborted").Inc()
		return "", fmt.Errorf("refresh aborted: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	creds, err := c.store.Get(ctx)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("denied").Inc()
		return "", c.expire(ctx, fmt.Errorf("read refresh token: %w", err))
	}
	if creds.RefreshToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("missing").Inc()
		return "", c.expire(ctx, errors.New("no refresh token available"))
	}

	token, err := c.exchange(ctx, creds.RefreshToken)
	if err != nil && ctx.Err() != nil {
		// Cancelled by the caller: keep the stored tokens.
		metrics.TokenRefreshTotal.WithLabelValues("aborted").Inc()
		return "", fmt.Errorf("refresh aborted: %w", err)
	}
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("denied").Inc()
		return "", c.expire(ctx, err)
	}

	if err := c.store.SetAccessToken(ctx, token); err != nil {
		c.log.Warn().Err(err).Msg("persist refreshed access token")
	}
	if o := c.currentObserver(); o != nil {
		o.TokenRefreshed(token)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	c.log.Info().Msg("access token refreshed")
	return token, nil
}

// exchange calls the refresh endpoint directly on the transport: no bearer
// header and no retry policy, so its failure can never trigger another
// refresh.
func (c *Client) exchange(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, refreshPath, nil, body)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req, refreshPath)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", responseError(resp)
	}

	var out domain.AccessToken
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errMissingAccessToken
	}
	return out.AccessToken, nil
}

// expire clears both stored tokens and the session, and returns cause wrapped
// in ErrAuthExpired.
func (c *Client) expire(ctx context.Context, cause error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("clear credentials after refresh failure")
	}
	if o := c.currentObserver(); o != nil {
		o.SessionExpired()
	}
	c.log.Warn().Err(cause).Msg("token refresh denied, session cleared")
	return fmt.Errorf("%w: %w", domain.ErrAuthExpired, cause)
}
