// Package api is a small typed client for the pixo HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	"github.com/dmitrijs2005/pixo/internal/netx"
	"github.com/dmitrijs2005/pixo/internal/server/models"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

type PublishRequest struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	SongName string   `json:"songName,omitempty"`
	SongLink string   `json:"songLink,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
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
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, username, password, picture string) error {
	in := map[string]string{"username": username, "password": password, "picture": picture}
	return c.do(ctx, http.MethodPost, "/register", in, nil)
}

// Login stores the returned token on the client and returns it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", in, &out); err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) UploadTicket(ctx context.Context) (*models.UploadTicket, error) {
	var t models.UploadTicket
	if err := c.do(ctx, http.MethodPost, "/upload-url", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UploadAsset stores data in object storage and returns its public URL.
func (c *Client) UploadAsset(ctx context.Context, data []byte, contentType string) (string, error) {
	ticket, err := c.UploadTicket(ctx)
	if err != nil {
		return "", err
	}
	if err := netx.UploadToPresignedURL(ctx, c.http, ticket.UploadURL, contentType, data); err != nil {
		return "", err
	}
	return ticket.URL, nil
}

func (c *Client) Publish(ctx context.Context, in PublishRequest) (*models.Image, error) {
	var out struct {
		Image *models.Image `json:"image"`
	}
	if err := c.do(ctx, http.MethodPost, "/upload-image", in, &out); err != nil {
		return nil, err
	}
	return out.Image, nil
}
