package r2client

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ArchiveContentType is the content type of bundle archives.
const ArchiveContentType = "application/zstd"

// BundleKey returns the object key of an algorithm's bundle archive.
func BundleKey(prefix, algorithm string) string {
	return prefix + algorithm + ".tar.zst"
}

// PublishBundle archives the bundle directory of algorithm under
// modelDir and uploads it under prefix.
func (c *Client) PublishBundle(ctx context.Context, modelDir, algorithm, prefix string) error {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeArchive(pw, filepath.Join(modelDir, algorithm)))
	}()

	if _, err := c.Upload(ctx, BundleKey(prefix, algorithm), pr, ArchiveContentType); err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	return nil
}

// FetchBundle downloads the bundle archive of algorithm and extracts it
// into modelDir/<algorithm>, replacing whatever is there.
func (c *Client) FetchBundle(ctx context.Context, modelDir, algorithm, prefix string) error {
	body, err := c.Download(ctx, BundleKey(prefix, algorithm))
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	dst := filepath.Join(modelDir, algorithm)
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("r2client: clear bundle dir: %w", err)
	}
	return extractArchive(body, dst)
}

// writeArchive streams dir as a zstd-compressed tar to w. File paths in
// the archive are relative to dir.
func writeArchive(w io.Writer, dir string) error {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("r2client: create zstd writer: %w", err)
	}
	tw := tar.NewWriter(encoder)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		_ = f.Close()
		return err
	})
	if err != nil {
		_ = tw.Close()
		_ = encoder.Close()
		return fmt.Errorf("r2client: archive %s: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

// extractArchive unpacks a zstd-compressed tar stream into dir.
func extractArchive(r io.Reader, dir string) error {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("r2client: create zstd reader: %w", err)
	}
	defer decoder.Close()

	tr := tar.NewReader(decoder)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("r2client: read archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		// Reject entries escaping the destination directory.
		name := filepath.FromSlash(header.Name)
		if strings.Contains(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("r2client: unsafe archive path %q", header.Name)
		}

		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil { //nolint:gosec // artifacts are bounded JSON files
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
}
