// Package ingest turns a source document into embedded chunks: download,
// page extraction, splitting, embedding, and storage.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const downloadTimeout = 30 * time.Second

// Regulator sites reject default Go client requests, so the downloader
// presents a browser user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DownloadDocument fetches the source document from url and writes it to
// destPath. An HTML response means the server served an error or consent
// page instead of the document, and is treated as a failure.
func DownloadDocument(ctx context.Context, url, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %s", resp.Status)
	}
	if contentType := resp.Header.Get("Content-Type"); strings.Contains(contentType, "text/html") {
		return fmt.Errorf("server returned an HTML page instead of the document (content type %q)", contentType)
	}

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create document file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write document file: %w", err)
	}
	log.Printf("Downloaded %d bytes to %s", written, destPath)
	return nil
}
