// Package gdrive adapts the remote document store port onto Google
// Drive: one JSON file per user in the application data folder,
// addressed by the user's id. The Drive API has no server-side merge,
// so Merge is read-overlay-write over the document's top-level fields.
package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"

	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
)

const documentPrefix = "finance_planner_state_v2"

type Client struct {
	svc *drive.Service
}

var _ docstore.Client = (*Client)(nil)

// NewFromEnv creates a Drive client from OAuth credentials in the
// environment. Required: GOOGLE_OAUTH_CLIENT_JSON or
// GOOGLE_OAUTH_CLIENT_FILE, plus GOOGLE_OAUTH_TOKEN_JSON or
// GOOGLE_OAUTH_TOKEN_FILE (produce the token with cmd/oauth-init).
func NewFromEnv(ctx context.Context) (*Client, error) {
	clientJSON, err := readEnvJSON("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}
	tokenJSON, err := readEnvJSON("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	cfg, err := google.ConfigFromJSON(clientJSON, drive.DriveAppdataScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := drive.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	slog.InfoContext(ctx, "Google Drive docstore initialized", "scope", drive.DriveAppdataScope)
	return &Client{svc: svc}, nil
}

func readEnvJSON(inlineVar, fileVar string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(inlineVar)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileVar)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("set %s or %s", inlineVar, fileVar)
}

func documentName(userID string) string {
	return documentPrefix + "-" + userID + ".json"
}

// findFile returns the file id of the user's document, or "" when none
// exists yet.
func (c *Client) findFile(ctx context.Context, userID string) (string, error) {
	name := documentName(userID)
	list, err := c.svc.Files.List().
		Spaces("appDataFolder").
		Q(fmt.Sprintf("name = '%s' and trashed = false", name)).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list appdata files: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (c *Client) download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return body, nil
}

func (c *Client) upload(ctx context.Context, userID, fileID string, body []byte) error {
	if fileID == "" {
		meta := &drive.File{
			Name:     documentName(userID),
			Parents:  []string{"appDataFolder"},
			MimeType: "application/json",
		}
		_, err := c.svc.Files.Create(meta).Media(bytes.NewReader(body)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return nil
	}
	_, err := c.svc.Files.Update(fileID, &drive.File{}).Media(bytes.NewReader(body)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, userID string) (core.FinanceState, bool, error) {
	fileID, err := c.findFile(ctx, userID)
	if err != nil {
		return core.FinanceState{}, false, err
	}
	if fileID == "" {
		return core.FinanceState{}, false, nil
	}
	body, err := c.download(ctx, fileID)
	if err != nil {
		return core.FinanceState{}, false, err
	}
	var st core.FinanceState
	if err := json.Unmarshal(body, &st); err != nil {
		return core.FinanceState{}, false, fmt.Errorf("unmarshal document: %w", err)
	}
	return core.Normalize(st), true, nil
}

func (c *Client) Set(ctx context.Context, userID string, st core.FinanceState) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	fileID, err := c.findFile(ctx, userID)
	if err != nil {
		return err
	}
	return c.upload(ctx, userID, fileID, body)
}

func (c *Client) Merge(ctx context.Context, userID string, st core.FinanceState) error {
	next, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	fileID, err := c.findFile(ctx, userID)
	if err != nil {
		return err
	}
	if fileID == "" {
		// Nothing to merge into: merge of a missing document creates it.
		return c.upload(ctx, userID, "", next)
	}

	existing, err := c.download(ctx, fileID)
	if err != nil {
		return err
	}
	merged, err := mergeTopLevel(existing, next)
	if err != nil {
		return err
	}
	return c.upload(ctx, userID, fileID, merged)
}

// mergeTopLevel overlays next's top-level JSON fields onto existing.
// Array fields are replaced wholesale; that matches the remote store's
// shallow-merge contract.
func mergeTopLevel(existing, next []byte) ([]byte, error) {
	var base map[string]json.RawMessage
	if err := json.Unmarshal(existing, &base); err != nil {
		// A corrupt remote document is replaced rather than preserved.
		slog.Warn("Remote document unreadable, replacing", "error", err)
		base = map[string]json.RawMessage{}
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(next, &overlay); err != nil {
		return nil, errors.New("state did not serialize to a JSON object")
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
