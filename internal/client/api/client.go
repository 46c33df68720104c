package api

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
	"net/url"
	"strings"

	"github.com/askelund/proofdeck/internal/common"
)

// Client talks to the backend HTTP surface. It holds the owner-session token
// once one has been obtained; capability-link operations need none.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	ownerToken   string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	// Watch streams stay open until their context is cancelled, so they get
	// a client without the per-request timeout.
	streamClient := &http.Client{Transport: httpClient.Transport}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
		streamClient: streamClient,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// decodeError maps an error response to a sentinel where one fits and
// otherwise surfaces the server's message verbatim.
func decodeError(resp *http.Response) error {
	var body errorBody
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	default:
		return errors.New(msg)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ownerToken != "" {
		req.Header.Set(common.OwnerTokenHeaderName, "Bearer "+c.ownerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func withKey(path string, accessKey string) string {
	if accessKey == "" {
		return path
	}
	return path + "?" + common.AccessKeyParam + "=" + url.QueryEscape(accessKey)
}

// Authenticate exchanges the owner secret for a session token and stores it
// for subsequent creator-surface calls.
func (c *Client) Authenticate(ctx context.Context, secret string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/owner/token", map[string]string{"secret": secret}, &out)
	if err != nil {
		return err
	}
	c.ownerToken = out.Token
	return nil
}

func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var out Project
	err := c.doJSON(ctx, http.MethodPost, "/api/projects", map[string]string{"name": name}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]*Project, error) {
	var out []*Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string, accessKey string) (*Project, error) {
	var out Project
	err := c.doJSON(ctx, http.MethodGet, withKey("/api/projects/"+url.PathEscape(id), accessKey), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string, accessKey string) error {
	return c.doJSON(ctx, http.MethodDelete, withKey("/api/projects/"+url.PathEscape(id), accessKey), nil, nil)
}

func (c *Client) ProjectShareLink(ctx context.Context, id string, accessKey string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.doJSON(ctx, http.MethodGet, withKey("/api/projects/"+url.PathEscape(id)+"/share", accessKey), nil, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) ListReviews(ctx context.Context, projectID string, accessKey string) ([]*Review, error) {
	var out []*Review
	err := c.doJSON(ctx, http.MethodGet, withKey("/api/projects/"+url.PathEscape(projectID)+"/reviews", accessKey), nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends one file as multipart form data. With an empty projectID the
// standalone endpoint is used and no key is required.
func (c *Client) Upload(ctx context.Context, projectID string, accessKey string,
	filename string, contentType string, data io.Reader) (*Review, error) {

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	path := "/api/reviews"
	if projectID != "" {
		path = withKey("/api/projects/"+url.PathEscape(projectID)+"/reviews", accessKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	var out Review
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReview(ctx context.Context, id string) (*Review, error) {
	var out Review
	if err := c.doJSON(ctx, http.MethodGet, "/api/reviews/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReviewStatus toggles the approval state and returns the resulting
// row; callers render from the returned value, not from what they sent.
func (c *Client) UpdateReviewStatus(ctx context.Context, id string, status string) (*Review, error) {
	var out Review
	err := c.doJSON(ctx, http.MethodPatch, "/api/reviews/"+url.PathEscape(id)+"/status",
		map[string]string{"status": status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string, accessKey string) error {
	return c.doJSON(ctx, http.MethodDelete, withKey("/api/reviews/"+url.PathEscape(id), accessKey), nil, nil)
}

func (c *Client) ReviewShareLink(ctx context.Context, id string, accessKey string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.doJSON(ctx, http.MethodGet, withKey("/api/reviews/"+url.PathEscape(id)+"/share", accessKey), nil, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) ListComments(ctx context.Context, reviewID string) ([]*Comment, error) {
	var out []*Comment
	err := c.doJSON(ctx, http.MethodGet, "/api/reviews/"+url.PathEscape(reviewID)+"/comments", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, reviewID string, x, y float64, text string) (*Comment, error) {
	var out Comment
	err := c.doJSON(ctx, http.MethodPost, "/api/reviews/"+url.PathEscape(reviewID)+"/comments",
		map[string]any{"x": x, "y": y, "text": text}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
