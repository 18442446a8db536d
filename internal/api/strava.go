package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"runhub/internal/config"
	"runhub/internal/domain"

	"github.com/valyala/fasthttp"
)

const (
	baseURL  = "https://www.strava.com/api/v3"
	tokenURL = "https://www.strava.com/oauth/token"
	authURL  = "https://www.strava.com/oauth/authorize"
)

type StravaClient struct {
	clientID     string
	clientSecret string
	client       *fasthttp.Client
}

func NewStravaClient(cfg *config.Config) *StravaClient {
	return &StravaClient{
		clientID:     cfg.StravaClientID,
		clientSecret: cfg.StravaClientSecret,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Activity is the upstream activity record shape. Only the fields the core
// consumes are decoded; everything else is discarded at the boundary.
type Activity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Distance       float64 `json:"distance"`    // meters
	MovingTime     int     `json:"moving_time"` // seconds
	StartDateLocal string  `json:"start_date_local"`
}

// TokenResponse is the oauth/token response for both grant types. Strava
// includes the athlete summary on the authorization_code grant only.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Athlete      struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
	} `json:"athlete"`
}

// ActivityFilter narrows GetActivities server-side. Zero values mean no bound.
type ActivityFilter struct {
	After  int64 // epoch seconds, exclusive lower bound on start date
	Before int64 // epoch seconds, exclusive upper bound on start date
}

// AuthorizeURL builds the Strava authorization redirect target.
func (c *StravaClient) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", "read,profile:read_all,activity:read_all")
	q.Set("approval_prompt", "auto")
	q.Set("state", state)
	return authURL + "?" + q.Encode()
}

// GetActivities fetches one page of the athlete's activities.
func (c *StravaClient) GetActivities(ctx context.Context, accessToken string, page, perPage int, filter ActivityFilter) ([]Activity, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if filter.After != 0 {
		q.Set("after", strconv.FormatInt(filter.After, 10))
	}
	if filter.Before != 0 {
		q.Set("before", strconv.FormatInt(filter.Before, 10))
	}

	reqURL := baseURL + "/athlete/activities?" + q.Encode()

	body, err := c.doRequest(ctx, fasthttp.MethodGet, reqURL, "Bearer "+accessToken, nil)
	if err != nil {
		return nil, err
	}

	var activities []Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, &domain.UpstreamError{Op: "get activities", Err: fmt.Errorf("decode response: %w", err)}
	}
	return activities, nil
}

// ExchangeCode performs the authorization_code grant.
func (c *StravaClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	return c.tokenRequest(ctx, "exchange code", form)
}

// RefreshToken performs the refresh_token grant.
func (c *StravaClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")
	return c.tokenRequest(ctx, "refresh token", form)
}

func (c *StravaClient) tokenRequest(ctx context.Context, op string, form url.Values) (*TokenResponse, error) {
	body, err := c.doRequest(ctx, fasthttp.MethodPost, tokenURL, "", []byte(form.Encode()))
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if token.AccessToken == "" {
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("empty access token in response")}
	}
	return &token, nil
}

func (c *StravaClient) doRequest(ctx context.Context, method, reqURL, authorization string, formBody []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(method)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if formBody != nil {
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(formBody)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return nil, &domain.UpstreamError{Op: method + " " + reqURL, Err: err}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &domain.UpstreamError{Op: method + " " + reqURL, StatusCode: resp.StatusCode()}
	}

	// Body is pooled by fasthttp, copy before release.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
