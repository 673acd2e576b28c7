// Package bootstrap starts and resumes generation sessions over the forge
// server's HTTP API. Starting a session yields a line-delimited response
// stream: blueprint chunks first, then a metadata record naming the session
// and its live endpoint, then the initial file set.
package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/zlillymp/forgeline/internal/jsonrepair"
	"github.com/zlillymp/forgeline/internal/wire"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

const sessionsPath = "api/sessions"

// Config configures a Client.
type Config struct {
	// BaseURL is the forge server root, e.g. https://forge.example.com.
	BaseURL string
	// HTTPClient overrides the default client. The default carries no
	// overall timeout because the start response streams.
	HTTPClient *http.Client
	Logger     pslog.Logger
}

// Client talks to the forge server's session endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     pslog.Logger
}

// New constructs a Client for the given server.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("server base URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 0}
	}
	log := cfg.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Client{baseURL: baseURL, http: httpClient, log: log}, nil
}

// StartResult carries everything needed to open the live connection.
type StartResult struct {
	SessionID    schema.SessionID
	WebSocketURL string
	Query        string
	Blueprint    schema.Blueprint
	Files        []schema.FileSnapshot
}

// BlueprintFunc receives progressive blueprint parses while the start
// stream is still arriving. May be nil.
type BlueprintFunc func(schema.Blueprint)

// record is one line of the start stream.
type record struct {
	Type         string               `json:"type"`
	Chunk        string               `json:"chunk,omitempty"`
	SessionID    schema.SessionID     `json:"session_id,omitempty"`
	WebSocketURL string               `json:"websocket_url,omitempty"`
	File         *schema.FileSnapshot `json:"file,omitempty"`
}

const (
	recordBlueprintChunk = "blueprint_chunk"
	recordMeta           = "meta"
	recordFile           = "file"
)

// Start begins a new generation session for query and consumes the start
// stream to completion. onBlueprint, when non-nil, is invoked with each
// successful progressive parse of the growing blueprint document.
func (c *Client) Start(ctx context.Context, query string, onBlueprint BlueprintFunc) (StartResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return StartResult{}, schema.ErrEmptyQuery
	}
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return StartResult{}, err
	}
	res, err := c.do(ctx, http.MethodPost, c.baseURL.JoinPath(sessionsPath), bytes.NewReader(body))
	if err != nil {
		return StartResult{}, fmt.Errorf("start session: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode >= 300 {
		return StartResult{}, readAPIError(res)
	}
	result, err := c.consumeStream(ctx, res.Body, onBlueprint)
	if err != nil {
		return StartResult{}, err
	}
	result.Query = query
	c.log.Info("session started",
		"session", result.SessionID,
		"files", len(result.Files),
		"blueprint", result.Blueprint.Title)
	return result, nil
}

// Resume fetches the metadata and current file set for an existing session.
// The response uses the same line-delimited format as Start.
func (c *Client) Resume(ctx context.Context, id schema.SessionID) (StartResult, error) {
	if id == "" {
		return StartResult{}, schema.ErrSessionNotFound
	}
	res, err := c.do(ctx, http.MethodGet, c.baseURL.JoinPath(sessionsPath, url.PathEscape(string(id))), nil)
	if err != nil {
		return StartResult{}, fmt.Errorf("resume session: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == http.StatusNotFound {
		return StartResult{}, schema.ErrSessionNotFound
	}
	if res.StatusCode >= 300 {
		return StartResult{}, readAPIError(res)
	}
	result, err := c.consumeStream(ctx, res.Body, nil)
	if err != nil {
		return StartResult{}, err
	}
	c.log.Info("session resumed", "session", result.SessionID, "files", len(result.Files))
	return result, nil
}

// consumeStream reads start-stream records until EOF. The stream must carry
// a meta record before it ends; blueprint chunks accumulate into a single
// growing document that is reparsed best effort after every chunk.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, onBlueprint BlueprintFunc) (StartResult, error) {
	var (
		result   StartResult
		repairer = jsonrepair.NewRepairer()
		scanner  = wire.NewScanner(body)
		sawMeta  bool
	)
	for {
		line, err := scanner.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return StartResult{}, fmt.Errorf("read start stream: %w", err)
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			c.log.Warn("undecodable start stream line dropped", "err", err, "line", preview(line))
			continue
		}
		switch rec.Type {
		case recordBlueprintChunk:
			repairer.Feed(rec.Chunk)
			if blueprint, ok := blueprintFrom(repairer.Finalize()); ok {
				result.Blueprint = blueprint
				if onBlueprint != nil {
					onBlueprint(blueprint)
				}
			}
		case recordMeta:
			result.SessionID = rec.SessionID
			result.WebSocketURL = rec.WebSocketURL
			sawMeta = true
		case recordFile:
			if rec.File != nil && rec.File.Path != "" {
				result.Files = append(result.Files, *rec.File)
			}
		default:
			c.log.Debug("unrecognized start stream record skipped", "type", rec.Type)
		}
	}
	if !sawMeta || result.SessionID == "" {
		return StartResult{}, schema.ErrMissingMeta
	}
	if result.Blueprint.Empty() && repairer.Len() > 0 {
		c.log.Warn("blueprint document never parsed", "bytes", repairer.Len())
	}
	return result, nil
}

// blueprintFrom converts a repaired generic document into a Blueprint.
func blueprintFrom(value any, ok bool) (schema.Blueprint, bool) {
	if !ok {
		return schema.Blueprint{}, false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return schema.Blueprint{}, false
	}
	var blueprint schema.Blueprint
	if err := json.Unmarshal(raw, &blueprint); err != nil {
		return schema.Blueprint{}, false
	}
	return blueprint, !blueprint.Empty()
}

// WebSocketURLFor normalizes a live endpoint: absolute ws URLs pass
// through, relative paths resolve against the server base with the matching
// ws scheme.
func (c *Client) WebSocketURLFor(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse websocket URL: %w", err)
	}
	if u.Scheme == "ws" || u.Scheme == "wss" {
		return u.String(), nil
	}
	resolved := c.baseURL.ResolveReference(u)
	switch resolved.Scheme {
	case "https":
		resolved.Scheme = "wss"
	default:
		resolved.Scheme = "ws"
	}
	return resolved.String(), nil
}

// do issues one request. reqURL comes from baseURL.JoinPath so escaped
// path elements (session ids may contain anything) survive verbatim.
func (c *Client) do(ctx context.Context, method string, reqURL *url.URL, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/x-ndjson")
	return c.http.Do(req)
}

func readAPIError(res *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	msg := strings.TrimSpace(string(payload))
	if msg == "" {
		msg = res.Status
	}
	if res.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", schema.ErrInvalidRequest, msg)
	}
	return fmt.Errorf("forge server: %s", msg)
}

func preview(line []byte) string {
	const max = 200
	if len(line) > max {
		return string(line[:max]) + "..."
	}
	return string(line)
}
