// Package ckan implements the CommentAPI and ThreadReader ports against the
// action API of a CKAN portal running the comments extension.
package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CommentAPI   = (*Client)(nil)
	_ driven.ThreadReader = (*Client)(nil)
)

// maxResponseBytes caps how much of an action response is read.
const maxResponseBytes = 4 << 20

// Client talks to {baseURL}/api/action/<name>.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a portal client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching for thread reads)
//  2. net/http default transport
//
// A zero timeout leaves cancellation to the caller's context.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	return &Client{
		http:    &http.Client{Transport: cacheTransport, Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}, nil
}

// CreateComment submits comments_comment_create.
func (c *Client) CreateComment(ctx context.Context, req model.CreateCommentRequest) error {
	payload := map[string]any{
		"subject_id":    req.Subject.ID,
		"subject_type":  string(req.Subject.Type),
		"content":       req.Content,
		"create_thread": req.CreateThread,
	}
	if req.ReplyToID != "" {
		payload["reply_to_id"] = req.ReplyToID
	}
	if req.Email != "" {
		payload["email"] = req.Email
	}
	if req.Username != "" {
		payload["username"] = req.Username
	}
	if req.Consent != "" {
		payload["consent"] = req.Consent
	}
	// The honeypot field is always sent so the portal can reject bots.
	payload["url"] = req.URL

	_, err := c.post(ctx, model.OpCreate.ActionName(), payload)
	return err
}

// UpdateComment submits comments_comment_update.
func (c *Client) UpdateComment(ctx context.Context, req model.UpdateCommentRequest) error {
	_, err := c.post(ctx, model.OpUpdate.ActionName(), map[string]any{
		"id":      req.ID,
		"content": req.Content,
	})
	return err
}

// DeleteComment submits comments_comment_delete. The moderation notice
// fields are always present, empty when the author is not notified.
func (c *Client) DeleteComment(ctx context.Context, req model.DeleteCommentRequest) error {
	_, err := c.post(ctx, model.OpDelete.ActionName(), map[string]any{
		"id":      req.ID,
		"subject": req.Subject,
		"body":    req.Body,
	})
	return err
}

// ApproveComment submits comments_comment_approve.
func (c *Client) ApproveComment(ctx context.Context, id string) error {
	_, err := c.post(ctx, model.OpApprove.ActionName(), map[string]any{"id": id})
	return err
}

// DraftComment submits comments_comment_draft.
func (c *Client) DraftComment(ctx context.Context, id string) error {
	_, err := c.post(ctx, model.OpDraft.ActionName(), map[string]any{"id": id})
	return err
}

// BlockSubject submits comments_blocked_entity_create.
func (c *Client) BlockSubject(ctx context.Context, subject model.Subject) error {
	_, err := c.post(ctx, model.OpBlock.ActionName(), subjectPayload(subject))
	return err
}

// UnblockSubject submits comments_blocked_entity_delete.
func (c *Client) UnblockSubject(ctx context.Context, subject model.Subject) error {
	_, err := c.post(ctx, model.OpUnblock.ActionName(), subjectPayload(subject))
	return err
}

// ShowThread reads comments_thread_show. It is issued as a GET so the cache
// transport can revalidate it with the portal's ETag.
func (c *Client) ShowThread(ctx context.Context, subject model.Subject, q driven.ThreadQuery) (*model.ThreadDetail, error) {
	params := url.Values{}
	params.Set("subject_id", subject.ID)
	params.Set("subject_type", string(subject.Type))
	params.Set("include_comments", strconv.FormatBool(q.IncludeComments))
	params.Set("include_author", strconv.FormatBool(q.IncludeAuthor))
	params.Set("combine_comments", strconv.FormatBool(q.CombineComments))
	params.Set("newest_first", strconv.FormatBool(q.NewestFirst))
	params.Set("init_missing", strconv.FormatBool(q.InitMissing))

	result, err := c.get(ctx, "comments_thread_show", params)
	if err != nil {
		return nil, fmt.Errorf("showing thread for %s %s: %w", subject.Type, subject.ID, err)
	}

	var raw threadJSON
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("decoding thread for %s %s: %w", subject.Type, subject.ID, err)
	}

	return mapThread(raw, subject), nil
}

// IsBlocked reads comments_blocked_entity_show. The portal answers not found
// for a subject that is open for comments.
func (c *Client) IsBlocked(ctx context.Context, subject model.Subject) (bool, error) {
	_, err := c.post(ctx, "comments_blocked_entity_show", subjectPayload(subject))
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("showing blocked state for %s %s: %w", subject.Type, subject.ID, err)
	}
}

// Status calls status_show and returns the portal's CKAN version.
func (c *Client) Status(ctx context.Context) (string, error) {
	result, err := c.get(ctx, "status_show", nil)
	if err != nil {
		return "", err
	}

	var status struct {
		CKANVersion string `json:"ckan_version"`
	}
	if err := json.Unmarshal(result, &status); err != nil {
		return "", fmt.Errorf("decoding status: %w", err)
	}
	return status.CKANVersion, nil
}

func subjectPayload(subject model.Subject) map[string]any {
	return map[string]any{
		"subject_id":   subject.ID,
		"subject_type": string(subject.Type),
	}
}

func (c *Client) actionURL(action string) string {
	return c.baseURL + "/api/action/" + action
}

func (c *Client) post(ctx context.Context, action string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshaling request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.actionURL(action), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, action)
}

func (c *Client) get(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	target := c.actionURL(action)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", action, err)
	}

	return c.do(req, action)
}

// RequestIDHeader carries the controller's per-call correlation id so portal
// logs can be matched with ours.
const RequestIDHeader = "X-Request-ID"

func (c *Client) do(req *http.Request, action string) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	requestID := driven.RequestID(req.Context())
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", action, err)
	}

	slog.Debug("portal action",
		"action", action,
		"method", req.Method,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
		"request_id", requestID,
	)

	return decodeEnvelope(action, resp.StatusCode, data)
}
