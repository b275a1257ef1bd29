// Package submit posts wizard commands to a running wizard server.
package submit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reoring/dashschema/internal/logger"
	"github.com/reoring/dashschema/wizard"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	// Username and Password authenticate admin panel requests.
	Username string
	Password string
	// HTTPClient replaces the default transport when set.
	HTTPClient *http.Client
	// Now stamps feedback; time.Now when nil.
	Now func() time.Time
}

// Client talks to the wizard server. It is safe for concurrent use.
type Client struct {
	http     *resty.Client
	username string
	password string
	now      func() time.Time
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submit %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("submit %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// New returns a client for the wizard server at opts.BaseURL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("base URL must be an absolute http(s) URL, got: %s", opts.BaseURL)
	}
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(opts.BaseURL).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{http: rc, username: opts.Username, password: opts.Password, now: now}, nil
}

// retryCondition retries network failures and overloaded servers.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

// SaveMain stores the main config.
func (c *Client) SaveMain(ctx context.Context, cmd wizard.SaveMain) (wizard.Feedback, error) {
	body, err := cmd.Body()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	_, fb, err := c.postJSON(ctx, wizard.EndpointMainSave, body)
	return fb, err
}

// SaveGraphic stores a graphic config.
func (c *Client) SaveGraphic(ctx context.Context, cmd wizard.SaveGraphic) (wizard.Feedback, error) {
	body, err := cmd.Body()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	_, fb, err := c.postJSON(ctx, wizard.EndpointGraphicSave, body)
	return fb, err
}

// UpdateSchemas fetches the graphic schemas for the given data sources. The
// returned bytes are the server's JSON document.
func (c *Client) UpdateSchemas(ctx context.Context, cmd wizard.UpdateSchemas) ([]byte, wizard.Feedback, error) {
	body, err := cmd.Body()
	if err != nil {
		return nil, wizard.Failed(c.now(), err), err
	}
	return c.postJSON(ctx, wizard.EndpointUpdateSchemas, body)
}

// ModifyLayout adds or deletes pages and graphics.
func (c *Client) ModifyLayout(ctx context.Context, cmd wizard.ModifyLayout) (wizard.Feedback, error) {
	form, err := cmd.Form()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	return c.postForm(ctx, wizard.EndpointLayout, form, false)
}

// EditGraphic opens the graphic editor.
func (c *Client) EditGraphic(ctx context.Context, cmd wizard.EditGraphic) (wizard.Feedback, error) {
	form, err := cmd.Form()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	return c.postForm(ctx, wizard.EndpointGraphic, form, false)
}

// ResetSelectors clears the selectors of a graphic on a dashboard page.
func (c *Client) ResetSelectors(ctx context.Context, cmd wizard.ResetSelectors) (wizard.Feedback, error) {
	form, err := cmd.Form()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	return c.postForm(ctx, cmd.Endpoint(), form, false)
}

// SetUploadActivation switches uploads on or off in the admin panel.
func (c *Client) SetUploadActivation(ctx context.Context, cmd wizard.UploadActivation) (wizard.Feedback, error) {
	form, err := cmd.Form()
	if err != nil {
		return wizard.Failed(c.now(), err), err
	}
	return c.postForm(ctx, wizard.EndpointAdmin, form, true)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body []byte) ([]byte, wizard.Feedback, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json;charset=UTF-8").
		SetHeader("Accept", "application/json").
		SetBody(body).
		Post(endpoint)
	fb, err := c.finish(ctx, endpoint, resp, err)
	if err != nil {
		return nil, fb, err
	}
	return resp.Body(), fb, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, auth bool) (wizard.Feedback, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form)
	if auth && c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := req.Post(endpoint)
	return c.finish(ctx, endpoint, resp, err)
}

func (c *Client) finish(ctx context.Context, endpoint string, resp *resty.Response, err error) (wizard.Feedback, error) {
	log := logger.FromContext(ctx)
	if err != nil {
		log.Error("Submission failed", "endpoint", endpoint, "error", err)
		err = fmt.Errorf("submit %s: %w", endpoint, err)
		return wizard.Failed(c.now(), err), err
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		serr := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: snippet(resp.String())}
		log.Warn("Submission rejected", "endpoint", endpoint, "status", resp.StatusCode())
		return wizard.Failed(c.now(), serr), serr
	}
	log.Debug("Submission applied", "endpoint", endpoint, "status", resp.StatusCode())
	return wizard.Applied(c.now()), nil
}

func snippet(s string) string {
	const maxBody = 200
	if len(s) > maxBody {
		return s[:maxBody] + "..."
	}
	return s
}
