// Package client talks to the complaint desk HTTP API and keeps the
// client-side session and complaint caches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Session is what register and login return: the user plus a bearer token.
type Session struct {
	models.User
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

// NewComplaint is the create form. Image is optional.
type NewComplaint struct {
	ComplaintType string
	StudentID     string
	Title         string
	Category      string
	Problem       string
	ImageName     string
	Image         io.Reader
}

type Summary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL (e.g. http://host:8081).
// A nil httpClient gets a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateComplaint sends the form as multipart/form-data.
func (c *Client) CreateComplaint(ctx context.Context, token string, in NewComplaint) (*models.Complaint, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"complaintType", in.ComplaintType},
		{"studentId", in.StudentID},
		{"title", in.Title},
		{"category", in.Category},
		{"problem", in.Problem},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if in.Image != nil {
		name := in.ImageName
		if name == "" {
			name = "image"
		}
		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, in.Image); err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/complaints", token, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.Complaint
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAll(ctx context.Context, token string) ([]models.Complaint, error) {
	var out []models.Complaint
	err := c.doJSON(ctx, http.MethodGet, "/api/complaints", token, nil, &out)
	return out, err
}

func (c *Client) ListMine(ctx context.Context, token string) ([]models.Complaint, error) {
	var out []models.Complaint
	err := c.doJSON(ctx, http.MethodGet, "/api/complaints/my", token, nil, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, token, id, status string) (*models.Complaint, error) {
	var out models.Complaint
	body := map[string]string{"status": status}
	if err := c.doJSON(ctx, http.MethodPut, "/api/complaints/"+url.PathEscape(id), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, token, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/complaints/"+url.PathEscape(id), token, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Summary(ctx context.Context, token string) (*Summary, error) {
	var out Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/complaints/summary", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchUpload streams a stored image. The caller closes the body.
func (c *Client) FetchUpload(ctx context.Context, name string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/uploads/"+url.PathEscape(name), "", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", decodeError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
