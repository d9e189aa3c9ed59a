// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/models"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// videosPerRequest is the maximum number of IDs the videos endpoint
	// accepts in one call.
	videosPerRequest = 50

	// maxErrorBodySize limits how much of an error response body is read
	// for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// VideoSource is the part of the YouTube API the sync manager consumes.
// Client implements it for production; tests substitute fakes.
type VideoSource interface {
	// ResolveUploadsPlaylist maps a channel ID to its uploads playlist ID.
	ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error)

	// ListPlaylistVideoIDs returns every video ID in a playlist,
	// following pagination.
	ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error)

	// FetchVideos returns metadata for the given video IDs. IDs that the
	// API omits (deleted or private videos) are silently absent from the
	// result.
	FetchVideos(ctx context.Context, channelID string, ids []string) ([]models.Video, error)
}

// Client is the YouTube Data API v3 client. It applies a client-side
// request rate limit and retries HTTP 429 with exponential backoff.
// Safe for concurrent use.
type Client struct {
	baseURL        string
	apiKey         string
	pageSize       int
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient builds a client from the ingest configuration.
func NewClient(cfg *config.YouTubeConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.RetryAttempts
	if retries <= 0 {
		retries = 5
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         cfg.APIKey,
		pageSize:       pageSize,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:     retries,
		retryBaseDelay: retryDelay,
	}
}

// ResolveUploadsPlaylist maps a channel ID to its uploads playlist ID.
func (c *Client) ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("channel %s not found", channelID)
	}

	uploads := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist", channelID)
	}
	return uploads, nil
}

// ListPlaylistVideoIDs returns every video ID in a playlist, following
// nextPageToken until exhausted. A failing page returns the IDs collected
// from earlier pages alongside the error so callers can keep partial
// results.
func (c *Client) ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", fmt.Sprintf("%d", c.pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsResponse
		if err := c.get(ctx, "playlistItems", params, &resp); err != nil {
			return ids, err
		}

		for _, item := range resp.Items {
			if item.ContentDetails.VideoID != "" {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}

		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// FetchVideos returns metadata for the given video IDs in request-sized
// batches. Private and deleted videos drop out of the API response, and
// non-embeddable videos are skipped since the kiosk player cannot show
// them. A failing batch returns the videos collected from earlier batches
// alongside the error.
func (c *Client) FetchVideos(ctx context.Context, channelID string, ids []string) ([]models.Video, error) {
	now := time.Now().UTC()
	videos := make([]models.Video, 0, len(ids))

	for start := 0; start < len(ids); start += videosPerRequest {
		end := start + videosPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("part", "snippet,contentDetails,status")
		params.Set("id", strings.Join(ids[start:end], ","))

		var resp videoListResponse
		if err := c.get(ctx, "videos", params, &resp); err != nil {
			return videos, err
		}

		for _, item := range resp.Items {
			if item.Status.PrivacyStatus == "private" || !item.Status.Embeddable {
				continue
			}

			seconds, err := parseISODuration(item.ContentDetails.Duration)
			if err != nil || seconds == 0 {
				// Live streams and premieres report P0D; skip them.
				continue
			}

			publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			if err != nil {
				publishedAt = now
			}

			videos = append(videos, models.Video{
				ID:              item.ID,
				ChannelID:       channelID,
				Title:           item.Snippet.Title,
				ThumbnailURL:    item.Snippet.Thumbnails.Medium.URL,
				DurationSeconds: seconds,
				Available:       true,
				PublishedAt:     publishedAt.UTC(),
				FetchedAt:       now,
			})
		}
	}

	return videos, nil
}

// get performs one API call with rate limiting, 429 backoff, and JSON
// decoding into result.
func (c *Client) get(ctx context.Context, resource string, params url.Values, result interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, params.Encode())

	resp, err := c.doWithBackoff(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s request failed with status %d: %s", resource, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("%s request failed with status %d", resource, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", resource, err)
	}
	return nil
}

// doWithBackoff waits for the rate limiter, then retries HTTP 429 with
// exponential backoff, honoring Retry-After when present.
func (c *Client) doWithBackoff(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
