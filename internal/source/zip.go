package source

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"amplifier/internal/bundleerr"
	"amplifier/internal/logging"
	"amplifier/internal/uri"
)

// ZipHandler resolves zip+<scheme>:// URIs by fetching (or reading, for
// zip+file://) the archive and extracting it into a content-keyed cache
// directory.
type ZipHandler struct {
	HTTPClient *http.Client
}

func (h *ZipHandler) CanHandle(p uri.ParsedURI) bool {
	return p.IsZip()
}

func (h *ZipHandler) Resolve(ctx context.Context, p uri.ParsedURI, cacheDir string) (ResolvedSource, error) {
	innerScheme := strings.TrimPrefix(p.Scheme, "zip+")
	archiveURL := fmt.Sprintf("%s://%s%s", innerScheme, p.Host, p.Path)

	key := cacheKey(archiveURL, p.Ref)
	name := strings.TrimSuffix(filepath.Base(p.Path), ".zip")
	root := filepath.Join(cacheDir, fmt.Sprintf("%s-%s", name, key))

	active := root
	if p.Subpath != "" {
		active = filepath.Join(root, p.Subpath)
	}

	if _, err := os.Stat(root); err == nil {
		if _, err := os.Stat(active); err == nil {
			logging.SourceDebug("zip cache hit: %s", root)
			return ResolvedSource{Active: active, Root: root}, nil
		}
		return ResolvedSource{}, bundleerr.NewNotFound(active, fmt.Errorf("subdirectory %q not found in cached archive %s", p.Subpath, root))
	}

	archivePath, err := h.fetchArchive(ctx, innerScheme, archiveURL, cacheDir, key)
	if err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(archiveURL, err)
	}

	if err := extractZip(archivePath, root); err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(archiveURL, fmt.Errorf("extract archive: %w", err))
	}

	if _, err := os.Stat(active); err != nil {
		return ResolvedSource{}, bundleerr.NewNotFound(active, fmt.Errorf("subdirectory %q not found after extraction", p.Subpath))
	}

	return ResolvedSource{Active: active, Root: root}, nil
}

func (h *ZipHandler) fetchArchive(ctx context.Context, scheme, archiveURL, cacheDir, key string) (string, error) {
	if scheme == "file" {
		path := strings.TrimPrefix(archiveURL, "file://")
		return path, nil
	}

	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch archive: status %s", resp.Status)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", err
	}
	archivePath := filepath.Join(cacheDir, key+".zip")
	f, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	return archivePath, nil
}

// extractZip extracts archivePath into dest, rejecting any entry whose
// cleaned path would escape dest (zip-slip).
func extractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		entryPath := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(entryPath, filepath.Clean(dest)+string(os.PathSeparator)) && entryPath != filepath.Clean(dest) {
			return fmt.Errorf("illegal file path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(entryPath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(entryPath), 0755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(entryPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}
