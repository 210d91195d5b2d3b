package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-board/internal/model"
)

const tasksPath = "/api/tasks"

// APIError is a non-2xx answer from the store endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store endpoint: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("store endpoint: %d: %s", e.Status, e.Message)
}

// Client talks to the store endpoint over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) Fetch(ctx context.Context) ([]model.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tasksPath, nil)
	if err != nil {
		return nil, err
	}

	doc, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// Save sends the whole list; the server overwrites its document with it.
func (c *Client) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	body, err := json.Marshal(model.Document{Tasks: tasks})
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+tasksPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) (model.Document, error) {
	var doc model.Document

	resp, err := c.http.Do(req)
	if err != nil {
		return doc, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Message
		}
		return doc, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode %s response: %w", req.Method, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	return doc, nil
}
