package bootstrap

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Download fetches and unpacks the server tarball into the install
// directory. It does nothing when the directory already holds an arangod
// binary.
func (s *Server) Download(ctx context.Context) error {
	if path, err := s.BinaryPath(); err == nil {
		s.logger.Info().Str("binary", path).Msg("arangod already installed")
		return nil
	}

	url := s.DownloadURL()
	s.logger.Info().Str("url", url).Str("dir", s.cfg.InstallDir).Msg("downloading arangodb")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	if err := extract(resp.Body, s.cfg.InstallDir); err != nil {
		return err
	}

	if _, err := s.BinaryPath(); err != nil {
		return err
	}
	return nil
}

// DownloadURL returns the tarball URL for the configured version.
func (s *Server) DownloadURL() string {
	if strings.Contains(s.cfg.DownloadURL, "%s") {
		return fmt.Sprintf(s.cfg.DownloadURL, s.cfg.Version)
	}
	return s.cfg.DownloadURL
}

// BinaryPath finds the arangod executable below the install directory.
func (s *Server) BinaryPath() (string, error) {
	var found string
	err := filepath.WalkDir(s.cfg.InstallDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == binaryName {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to search %s: %w", s.cfg.InstallDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("%s not found in %s", binaryName, s.cfg.InstallDir)
	}
	return found, nil
}

// extract unpacks a gzipped tarball into dir.
func extract(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target := filepath.Join(root, filepath.Clean(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", hdr.Name, dir)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, target); err != nil && !errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("failed to link %s: %w", target, err)
			}
		}
	}
}

func writeFile(path string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
