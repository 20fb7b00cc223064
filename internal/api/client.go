package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to the scope API.
type Client struct {
	BaseURL string
	Token   string
	Scheme  string // "Token" or "Bearer"
	HTTP    *http.Client
}

func NewClient(baseURL, token, scheme string, timeout time.Duration) *Client {
	if scheme == "" {
		scheme = "Token"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Scheme:  scheme,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// ID accepts both JSON numbers and strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type Program struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Scope struct {
	ScopeType string `json:"scope_type" yaml:"scope_type"`
	Domain    string `json:"domain,omitempty" yaml:"domain"`
	Target    string `json:"target,omitempty" yaml:"target"`
}

// Host is the domain, falling back to the target field.
func (s Scope) Host() string {
	if d := strings.TrimSpace(s.Domain); d != "" {
		return d
	}
	return strings.TrimSpace(s.Target)
}

// Upload is the body of POST /api/scans/upload-results/.
type Upload struct {
	ScanType string `json:"scan_type"`
	Results  string `json:"results"`
	FileName string `json:"file_name"`
	DeviceID string `json:"device_id"`
}

func (c *Client) GroupPrograms(ctx context.Context, groupID string) ([]Program, error) {
	var out []Program
	if err := c.getJSON(ctx, "/api/groups/"+groupID+"/programs/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProgramScopes(ctx context.Context, programID ID) ([]Scope, error) {
	var out []Scope
	if err := c.getJSON(ctx, "/api/programs/"+string(programID)+"/scopes/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadResults(ctx context.Context, u Upload) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/scans/upload-results/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends the request and turns non-200 answers into *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.Scheme+" "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}
