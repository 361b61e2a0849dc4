package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// FetchArchive downloads the ZIP at url, extracts it into dir and returns
// the path of the first CSV member in archive order.
func FetchArchive(ctx context.Context, client *http.Client, url, dir string) (string, error) {
	logger := log.GetLoggerWithName("dataset")
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", bikeErrors.Wrapf(err, "build request for %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", bikeErrors.Wrapf(err, "download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", bikeErrors.Newf("download %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", bikeErrors.Wrapf(err, "read body of %s", url)
	}

	logger.Info("Archive downloaded", log.PhaseKey, log.PhaseIngest, "url", url, "bytes", len(body))
	return extract(body, dir)
}

// ExtractArchive extracts a ZIP file on disk into dir and returns the path of
// the first CSV member.
func ExtractArchive(zipPath, dir string) (string, error) {
	body, err := os.ReadFile(zipPath)
	if err != nil {
		return "", bikeErrors.Wrapf(err, "read %s", zipPath)
	}
	return extract(body, dir)
}

func extract(body []byte, dir string) (string, error) {
	// ErrInsecurePath still yields a usable reader; members are checked below.
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil && !bikeErrors.Is(err, zip.ErrInsecurePath) {
		return "", bikeErrors.NewValueError("ExtractArchive", "The file is not a valid ZIP archive.")
	}

	var csvName string
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			csvName = f.Name
			break
		}
	}
	if csvName == "" {
		return "", bikeErrors.NewValueError("ExtractArchive", "No CSV files found in the ZIP archive.")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", bikeErrors.Wrapf(err, "create %s", dir)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", bikeErrors.WithStack(err)
	}

	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return "", bikeErrors.NewValueErrorf("ExtractArchive", "illegal path in archive: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", bikeErrors.WithStack(err)
			}
			continue
		}
		if err := writeMember(f, target); err != nil {
			return "", err
		}
	}

	return filepath.Join(root, filepath.FromSlash(csvName)), nil
}

func writeMember(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return bikeErrors.WithStack(err)
	}
	rc, err := f.Open()
	if err != nil {
		return bikeErrors.Wrapf(err, "open member %s", f.Name)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return bikeErrors.Wrapf(err, "create %s", target)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return bikeErrors.Wrapf(err, "extract %s", f.Name)
	}
	return out.Close()
}
