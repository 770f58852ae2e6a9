package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"carereviews/api/server"
	"carereviews/core/review"
)

// DefaultBaseURL is used when neither --server nor REVIEWS_SERVER is set.
const DefaultBaseURL = "http://localhost:8080"

// Client talks to a running review service.
type Client struct {
	http *resty.Client
}

// Credentials authenticate moderator calls. Either field may be empty.
type Credentials struct {
	APIKey string
	Token  string
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, creds Credentials) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if creds.APIKey != "" {
		c.SetHeader("X-API-Key", creds.APIKey)
	}
	if creds.Token != "" {
		c.SetAuthToken(creds.Token)
	}
	return &Client{http: c}
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int                 `json:"-"`
	Message    string              `json:"error"`
	Fields     []review.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, strings.Join(names, ", "))
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(resp.Body()))
	}
	return apiErr
}

// do executes req and decodes a 2xx body into out (if non-nil).
func do(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

// SubmitReview publishes a review.
func (c *Client) SubmitReview(sub review.Submission) (review.PatientReview, error) {
	var out review.PatientReview
	resp, err := c.http.R().SetBody(sub).Post("/api/v1/reviews")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// CheckReview runs the server-side dry run.
func (c *Client) CheckReview(sub review.Submission) (server.CheckResponse, error) {
	var out server.CheckResponse
	resp, err := c.http.R().SetBody(sub).Post("/api/v1/reviews/check")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ListOptions filter ListReviews. Zero values are omitted.
type ListOptions struct {
	Condition string
	MinRating int
	Limit     int
}

// ListReviews fetches published reviews, newest first.
func (c *Client) ListReviews(opts ListOptions) ([]review.PatientReview, error) {
	req := c.http.R()
	if opts.Condition != "" {
		req.SetQueryParam("condition", opts.Condition)
	}
	if opts.MinRating > 0 {
		req.SetQueryParam("minRating", strconv.Itoa(opts.MinRating))
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	var out []review.PatientReview
	resp, err := req.Get("/api/v1/reviews")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// GetReview fetches one review.
func (c *Client) GetReview(id string) (review.PatientReview, error) {
	var out review.PatientReview
	resp, err := c.http.R().SetPathParam("id", id).Get("/api/v1/reviews/{id}")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// MarkHelpful records a helpful vote and returns the updated review.
func (c *Client) MarkHelpful(id string) (review.PatientReview, error) {
	var out review.PatientReview
	resp, err := c.http.R().SetPathParam("id", id).Post("/api/v1/reviews/{id}/helpful")
	if err := do(resp, err, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DeleteReview removes a review. Requires moderator credentials.
func (c *Client) DeleteReview(id string) error {
	resp, err := c.http.R().SetPathParam("id", id).Delete("/api/v1/reviews/{id}")
	return do(resp, err, nil)
}
