// Package medium contains a thin client for the medium publishing API.
package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Semior001/mediumpub/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// ErrAuth is returned when medium rejects the integration token.
var ErrAuth = errors.New("token rejected")

// ErrMalformedResponse is returned when an expected field is missing
// from a response envelope.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned when medium responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

// Error returns the string representation of the error.
func (e *APIError) Error() string {
	return fmt.Sprintf("medium responded with %d: %s", e.StatusCode, e.Body)
}

// User is an authenticated medium account.
type User struct {
	ID string `json:"id"`
}

// Story is a published medium post.
type Story struct {
	URL string `json:"url"`
}

// PostParams is a payload for creating a post.
type PostParams struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags,omitempty"`
	ContentFormat string   `json:"contentFormat"`
	CanonicalURL  string   `json:"canonicalUrl,omitempty"`
	PublishStatus string   `json:"publishStatus"`
}

// Client makes requests to the medium API.
type Client struct {
	log     *slog.Logger
	baseURL string
	cl      *http.Client
}

// NewClient creates a client for the API at baseURL, authorizing every
// request with the given integration token.
func NewClient(lg *slog.Logger, baseURL, token string, timeout time.Duration) *Client {
	rq := requester.New(http.Client{Timeout: timeout},
		middleware.Header("Authorization", "Bearer "+token),
		middleware.Header("Accept", "application/json"),
		logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{
			Level:         slog.LevelDebug,
			SecretHeaders: []string{"Authorization"},
		}),
	)

	return &Client{log: lg, baseURL: strings.TrimSuffix(baseURL, "/"), cl: rq.Client()}
}

// GetCurrentUser returns the account the token belongs to.
func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/me", http.NoBody)
	if err != nil {
		return User{}, fmt.Errorf("build request: %w", err)
	}

	var resp struct {
		Data User `json:"data"`
	}
	if err = c.do(req, &resp); err != nil {
		return User{}, err
	}

	if resp.Data.ID == "" {
		return User{}, fmt.Errorf("%w: no user id", ErrMalformedResponse)
	}

	return resp.Data, nil
}

// CreatePost creates a post on behalf of the given user and returns the
// published story.
func (c *Client) CreatePost(ctx context.Context, userID string, params PostParams) (Story, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return Story{}, fmt.Errorf("marshal params: %w", err)
	}

	u := fmt.Sprintf("%s/v1/users/%s/posts", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return Story{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Data Story `json:"data"`
	}
	if err = c.do(req, &resp); err != nil {
		return Story{}, err
	}

	if resp.Data.URL == "" {
		return Story{}, fmt.Errorf("%w: no story url", ErrMalformedResponse)
	}

	return resp.Data, nil
}

// UploadImage uploads the JPEG image read from rd and returns its hosted URL.
func (c *Client) UploadImage(ctx context.Context, name string, rd io.Reader) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	hdr.Set("Content-Type", "image/jpeg")

	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}
	if _, err = io.Copy(part, rd); err != nil {
		return "", fmt.Errorf("write image payload: %w", err)
	}
	if err = mw.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images", body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err = c.do(req, &resp); err != nil {
		return "", err
	}

	if resp.Data.URL == "" {
		return "", fmt.Errorf("%w: no image url", ErrMalformedResponse)
	}

	return resp.Data.URL, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.cl.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(req.Context(), "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %w", ErrAuth, apiErr)
		}

		return apiErr
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}

	return nil
}
