// Package discord is the REST gateway the fleet modules use to provision and
// tear down guild resources (roles, categories, channels, threads, messages).
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const apiBase = "https://discord.com/api/v10"

// Channel types as defined by the Discord API.
const (
	ChannelTypeText     = 0
	ChannelTypeVoice    = 2
	ChannelTypeCategory = 4
)

// PermissionOverwrite restricts or grants channel permissions for a role or member.
type PermissionOverwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"` // 0 = role, 1 = member
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

// Role is a Discord guild role as returned by the API.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Mentionable bool   `json:"mentionable"`
}

// Channel is a Discord channel as returned by the API.
type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// Message is a Discord message as returned by the API.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// RateLimiter tracks per-endpoint request times and remaining quotas. The
// client is shared by request handlers and background workers, so access is
// guarded.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string]time.Time
	limits   map[string]int
}

// Client performs Discord REST operations with a bot token.
type Client struct {
	httpClient  *http.Client
	botToken    string
	rateLimiter *RateLimiter
}

// NewClient creates a Discord REST client for the given bot token.
func NewClient(botToken string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		botToken: botToken,
		rateLimiter: &RateLimiter{
			requests: make(map[string]time.Time),
			limits:   make(map[string]int),
		},
	}
}

// do executes a request against the Discord API and returns the response
// status and body. The endpoint key is used for client-side rate limiting.
func (c *Client) do(ctx context.Context, method, path, endpoint string, payload any) (int, []byte, error) {
	if err := c.checkRateLimit(ctx, endpoint); err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}

	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("User-Agent", "go-armada/1.0")
	req.Header.Set("X-Audit-Log-Reason", "Armada fleet provisioning")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.updateRateLimit(endpoint, resp.Header)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	return resp.StatusCode, respBody, nil
}

// CreateRole creates a guild role and returns its ID.
func (c *Client) CreateRole(ctx context.Context, guildID, name string, color int, hoist, mentionable bool) (string, error) {
	correlationID := uuid.NewString()
	payload := map[string]any{
		"name":        name,
		"color":       color,
		"hoist":       hoist,
		"mentionable": mentionable,
	}

	status, body, err := c.do(ctx, "POST", fmt.Sprintf("/guilds/%s/roles", guildID), "role_create", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("create role request failed with status %d: %s", status, string(body))
	}

	var role Role
	if err := json.Unmarshal(body, &role); err != nil {
		return "", fmt.Errorf("failed to parse create role response: %w", err)
	}

	slog.InfoContext(ctx, "Created Discord role",
		"guild_id", guildID,
		"role_id", role.ID,
		"name", name,
		"correlation_id", correlationID)

	return role.ID, nil
}

// DeleteRole deletes a guild role. The returned Outcome classifies the result
// for the teardown retry logic.
func (c *Client) DeleteRole(ctx context.Context, guildID, roleID string) (Outcome, error) {
	status, body, err := c.do(ctx, "DELETE", fmt.Sprintf("/guilds/%s/roles/%s", guildID, roleID), "role_delete", nil)
	if err != nil {
		return OutcomeOther, err
	}
	return classifyDelete(status, body, "delete role")
}

// CreateCategory creates a channel category in a guild and returns its ID.
func (c *Client) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	payload := map[string]any{
		"name": name,
		"type": ChannelTypeCategory,
	}

	status, body, err := c.do(ctx, "POST", fmt.Sprintf("/guilds/%s/channels", guildID), "channel_create", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", fmt.Errorf("create category request failed with status %d: %s", status, string(body))
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return "", fmt.Errorf("failed to parse create category response: %w", err)
	}

	return channel.ID, nil
}

// CreateVoiceChannel creates a voice channel under a category with the given
// permission overwrites and returns its ID.
func (c *Client) CreateVoiceChannel(ctx context.Context, guildID, parentID, name string, overwrites []PermissionOverwrite) (string, error) {
	payload := map[string]any{
		"name":      name,
		"type":      ChannelTypeVoice,
		"parent_id": parentID,
	}
	if len(overwrites) > 0 {
		payload["permission_overwrites"] = overwrites
	}

	status, body, err := c.do(ctx, "POST", fmt.Sprintf("/guilds/%s/channels", guildID), "channel_create", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", fmt.Errorf("create voice channel request failed with status %d: %s", status, string(body))
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return "", fmt.Errorf("failed to parse create voice channel response: %w", err)
	}

	return channel.ID, nil
}

// DeleteChannel deletes a channel or category. The returned Outcome classifies
// the result for the teardown retry logic.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) (Outcome, error) {
	status, body, err := c.do(ctx, "DELETE", fmt.Sprintf("/channels/%s", channelID), "channel_delete", nil)
	if err != nil {
		return OutcomeOther, err
	}
	return classifyDelete(status, body, "delete channel")
}

// RenameChannel changes the name of a channel or thread.
func (c *Client) RenameChannel(ctx context.Context, channelID, name string) error {
	payload := map[string]any{"name": name}

	status, body, err := c.do(ctx, "PATCH", fmt.Sprintf("/channels/%s", channelID), "channel_modify", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("rename channel request failed with status %d: %s", status, string(body))
	}

	return nil
}

// GrantRole adds a role to a guild member.
func (c *Client) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	status, body, err := c.do(ctx, "PUT", fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID), "role_modify", nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("grant role request failed with status %d: %s", status, string(body))
	}

	slog.InfoContext(ctx, "Granted Discord role",
		"guild_id", guildID,
		"user_id", userID,
		"role_id", roleID)

	return nil
}

// RevokeRole removes a role from a guild member.
func (c *Client) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	status, body, err := c.do(ctx, "DELETE", fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID), "role_modify", nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("revoke role request failed with status %d: %s", status, string(body))
	}

	slog.InfoContext(ctx, "Revoked Discord role",
		"guild_id", guildID,
		"user_id", userID,
		"role_id", roleID)

	return nil
}

// CreateForumThread creates a thread in a forum channel with an initial
// message and returns the thread ID.
func (c *Client) CreateForumThread(ctx context.Context, forumChannelID, title, content string) (string, error) {
	payload := map[string]any{
		"name": title,
		"message": map[string]any{
			"content": content,
		},
	}

	status, body, err := c.do(ctx, "POST", fmt.Sprintf("/channels/%s/threads", forumChannelID), "thread_create", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create thread request failed with status %d: %s", status, string(body))
	}

	var channel Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return "", fmt.Errorf("failed to parse create thread response: %w", err)
	}

	return channel.ID, nil
}

// CreateMessage posts a message to a channel and returns its ID.
func (c *Client) CreateMessage(ctx context.Context, channelID, content string) (string, error) {
	payload := map[string]any{"content": content}

	status, body, err := c.do(ctx, "POST", fmt.Sprintf("/channels/%s/messages", channelID), "message_create", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("create message request failed with status %d: %s", status, string(body))
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return "", fmt.Errorf("failed to parse create message response: %w", err)
	}

	return message.ID, nil
}

// EditMessage replaces the content of an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	payload := map[string]any{"content": content}

	status, body, err := c.do(ctx, "PATCH", fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), "message_modify", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("edit message request failed with status %d: %s", status, string(body))
	}

	return nil
}

// checkRateLimit waits when a request to the same endpoint family was made
// less than a second ago. The wait happens outside the lock.
func (c *Client) checkRateLimit(ctx context.Context, endpoint string) error {
	c.rateLimiter.mu.Lock()
	lastRequest, exists := c.rateLimiter.requests[endpoint]
	c.rateLimiter.mu.Unlock()

	if exists {
		timeSince := time.Since(lastRequest)
		if timeSince < time.Second {
			waitTime := time.Second - timeSince
			slog.WarnContext(ctx, "Rate limit hit, waiting", "endpoint", endpoint, "wait_time", waitTime)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}
	return nil
}

// updateRateLimit records the request time and remaining quota from headers.
func (c *Client) updateRateLimit(endpoint string, headers http.Header) {
	c.rateLimiter.mu.Lock()
	defer c.rateLimiter.mu.Unlock()

	c.rateLimiter.requests[endpoint] = time.Now()

	if remaining := headers.Get("X-RateLimit-Remaining"); remaining != "" {
		if count, err := strconv.Atoi(remaining); err == nil {
			c.rateLimiter.limits[endpoint] = count
		}
	}
}
