package signalapi

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

// Download fetches one artifact of a session as raw bytes. Unknown sessions
// and kinds match services.ErrArtifactNotFound; transport failures and server
// errors match services.ErrNetwork.
func (c *Client) Download(ctx context.Context, sessionID string, kind signal.ArtifactKind) (signal.Artifact, error) {
	if strings.TrimSpace(sessionID) == "" {
		return signal.Artifact{}, services.Wrap(services.ErrArtifactNotFound, "signalapi", "download", "session id required", nil)
	}
	if !kind.Valid() {
		return signal.Artifact{}, services.Wrap(services.ErrArtifactNotFound, "signalapi", "download", fmt.Sprintf("unknown artifact kind %q", kind), nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()
	ctx = services.WithSessionID(ctx, sessionID)

	target := fmt.Sprintf("%s/download/%s/%s", c.cfg.BaseURL, url.PathEscape(sessionID), kind)
	return c.fetchBinary(ctx, "download", target, kind)
}

// PlotURL resolves a plot_path returned by Generate against the asset base
// URL. Absolute URLs are returned unchanged.
func (c *Client) PlotURL(plotPath string) string {
	plotPath = strings.TrimSpace(plotPath)
	if plotPath == "" {
		return ""
	}
	if parsed, err := url.Parse(plotPath); err == nil && parsed.IsAbs() {
		return plotPath
	}
	return c.cfg.AssetBaseURL + "/" + strings.TrimLeft(strings.ReplaceAll(plotPath, "\\", "/"), "/")
}

// FetchPlot retrieves the static plot asset for inline preview.
func (c *Client) FetchPlot(ctx context.Context, plotPath string) (signal.Artifact, error) {
	target := c.PlotURL(plotPath)
	if target == "" {
		return signal.Artifact{}, services.Wrap(services.ErrArtifactNotFound, "signalapi", "plot", "plot path required", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()
	return c.fetchBinary(ctx, "plot", target, signal.ArtifactPlot)
}

type sessionFilesResponse struct {
	SessionID string            `json:"session_id"`
	Files     map[string]string `json:"files"`
}

// SessionFiles lists the artifacts the service still holds for a session.
// Kinds the client does not know are ignored.
func (c *Client) SessionFiles(ctx context.Context, sessionID string) (map[signal.ArtifactKind]string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, services.Wrap(services.ErrArtifactNotFound, "signalapi", "session_files", "session id required", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CatalogTimeout)
	defer cancel()
	ctx = services.WithSessionID(ctx, sessionID)

	target := fmt.Sprintf("%s/session/%s/files", c.cfg.BaseURL, url.PathEscape(sessionID))
	decoded, err := getJSON[sessionFilesResponse](ctx, c, "session_files", target)
	if err != nil {
		if se, ok := asStatusError(err); ok && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusBadRequest) {
			return nil, services.Wrap(services.ErrArtifactNotFound, "signalapi", "session_files", sessionID, se)
		}
		return nil, services.Wrap(services.ErrNetwork, "signalapi", "session_files", sessionID, err)
	}

	files := make(map[signal.ArtifactKind]string, len(decoded.Files))
	for key, path := range decoded.Files {
		kind, err := signal.ParseArtifactKind(key)
		if err != nil {
			continue
		}
		files[kind] = path
	}
	return files, nil
}

func (c *Client) fetchBinary(ctx context.Context, op, target string, kind signal.ArtifactKind) (signal.Artifact, error) {
	resp, err := c.do(ctx, op, http.MethodGet, target, nil)
	if err != nil {
		return signal.Artifact{}, services.Wrap(services.ErrNetwork, "signalapi", op, string(kind), err)
	}
	defer drainClose(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return signal.Artifact{}, services.Wrap(services.ErrArtifactNotFound, "signalapi", op, string(kind), newStatusError(resp))
	case resp.StatusCode >= 300:
		return signal.Artifact{}, services.Wrap(services.ErrNetwork, "signalapi", op, string(kind), newStatusError(resp))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes+1))
	if err != nil {
		return signal.Artifact{}, services.Wrap(services.ErrNetwork, "signalapi", op, "read body", err)
	}
	if len(data) > maxArtifactBytes {
		return signal.Artifact{}, services.Wrap(services.ErrNetwork, "signalapi", op, fmt.Sprintf("artifact exceeds %d bytes", maxArtifactBytes), nil)
	}
	return signal.Artifact{
		Kind:        kind,
		ContentType: contentType(resp.Header.Get("Content-Type"), kind),
		Data:        data,
	}, nil
}

func contentType(header string, kind signal.ArtifactKind) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		return kind.DefaultContentType()
	}
	return mediaType
}
