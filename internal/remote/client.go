// Package remote is the terminal client's adapter to the CalorieSnap server.
//
// Each method is one HTTP call. Non-2xx answers become *apperror.AppError:
// 401 carries apperror.ErrUnauthorized, everything else apperror.ErrRemote
// with the server's message verbatim. Transport failures are ErrRemote with
// status 0. The client never retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/caloriesnap/internal/apperror"
	"github.com/sakif/caloriesnap/internal/model"
	"github.com/sakif/caloriesnap/internal/nutrition"
)

const (
	defaultUserAgent = "caloriesnap-cli/1.0"
	// Photo analysis is the slowest call.
	requestTimeout = 60 * time.Second
)

// Client talks to the CalorieSnap HTTP API on behalf of one session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
	logger    *slog.Logger
}

// Session is what signup and login return.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Foods is a multi-item lookup result as sent by the server.
type Foods struct {
	Status nutrition.Status `json:"status"`
	Items  []model.FoodItem `json:"items"`
	Error  string           `json:"error,omitempty"`
}

// ImageFood is a photo analysis result as sent by the server.
type ImageFood struct {
	Status nutrition.Status `json:"status"`
	Item   *model.FoodItem  `json:"item"`
	Error  string           `json:"error,omitempty"`
}

// New builds a Client for baseURL, e.g. "http://localhost:8080". token may be
// empty until Login.
func New(baseURL, token string, logger *slog.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		token:     token,
		logger:    logger,
	}, nil
}

// Token returns the current session token.
func (c *Client) Token() string { return c.token }

// SetToken replaces the session token.
func (c *Client) SetToken(token string) { c.token = token }

// Signup creates an account; the new token is kept for later calls.
func (c *Client) Signup(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

// Login starts a session; the token is kept for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: path}, body, &s); err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

// Logout tells the server and forgets the token either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, &url.URL{Path: "/auth/logout"}, nil, nil)
	c.token = ""
	return err
}

// CurrentUser resolves the session's user.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/me"}, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/profiles/" + url.PathEscape(id)}, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile sends a partial update. Only present fields go on the wire.
func (c *Client) UpdateProfile(ctx context.Context, id string, u model.ProfileUpdate) error {
	return c.do(ctx, http.MethodPatch, &url.URL{Path: "/api/profiles/" + url.PathEscape(id)}, u, nil)
}

// ListLogs fetches the session user's logs. q.UserID is ignored; the server
// scopes the query to the caller.
func (c *Client) ListLogs(ctx context.Context, q model.LogQuery) ([]model.Log, error) {
	values := url.Values{}
	if !q.From.IsZero() {
		values.Set("from", q.From.Format(time.RFC3339Nano))
	}
	if !q.To.IsZero() {
		values.Set("to", q.To.Format(time.RFC3339Nano))
	}
	if q.Ascending {
		values.Set("order", "asc")
	} else {
		values.Set("order", "desc")
	}

	logs := make([]model.Log, 0)
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/logs", RawQuery: values.Encode()}, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) InsertLog(ctx context.Context, l model.Log) error {
	return c.do(ctx, http.MethodPost, &url.URL{Path: "/api/logs"}, l, nil)
}

// DeleteLog removes a log. The server answers 204 for an absent ID too.
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, &url.URL{Path: "/api/logs/" + url.PathEscape(id)}, nil, nil)
}

// MonthlySummary calls the aggregation procedure for [start, end]. Rows are
// keyed by calendar date in start's UTC offset.
func (c *Client) MonthlySummary(ctx context.Context, start, end time.Time) ([]model.DailySummary, error) {
	_, offset := start.Zone()
	body := map[string]any{
		"start_date": start.Format(time.RFC3339Nano),
		"end_date":   end.Format(time.RFC3339Nano),
		"tz_offset":  offset / 60,
	}
	rows := make([]model.DailySummary, 0)
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/api/rpc/get_monthly_calorie_summary"}, body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchFoods queries the food database through the server.
func (c *Client) SearchFoods(ctx context.Context, query string) (*Foods, error) {
	return c.foods(ctx, "/api/foods/search", query)
}

// EstimateFoods asks the AI estimator about a free-text description.
func (c *Client) EstimateFoods(ctx context.Context, query string) (*Foods, error) {
	return c.foods(ctx, "/api/foods/estimate", query)
}

func (c *Client) foods(ctx context.Context, path, query string) (*Foods, error) {
	values := url.Values{}
	values.Set("q", query)
	var f Foods
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: path, RawQuery: values.Encode()}, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// AnalyzeImage sends a base64 image (raw or data URI) for analysis.
func (c *Client) AnalyzeImage(ctx context.Context, image string) (*ImageFood, error) {
	var f ImageFood
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/api/foods/analyze"}, map[string]string{"image": image}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("remote: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", rel.Path),
			slog.String("error", err.Error()),
		)
		return apperror.Remote(0, "could not reach the server: "+unwrapURLError(err).Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.responseError(method, rel, resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperror.Remote(resp.StatusCode, "malformed server response: "+err.Error())
	}
	return nil
}

func (c *Client) responseError(method string, rel *url.URL, resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		eb.Message = strings.TrimSpace(string(data))
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
	}

	c.logger.Debug("server rejected request",
		slog.String("method", method),
		slog.String("path", rel.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("message", eb.Message),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return &apperror.AppError{Err: apperror.ErrUnauthorized, Message: eb.Message, Field: eb.Field, Status: resp.StatusCode}
	}
	return &apperror.AppError{Err: apperror.ErrRemote, Message: eb.Message, Field: eb.Field, Status: resp.StatusCode}
}

func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("remote: server URL is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("remote: parsing server URL %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
