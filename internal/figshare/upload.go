package figshare

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// UploadFile uploads the file at path to the article.
//
// The upload runs in four phases: the file is registered on the article with
// its size and MD5 digest, the upload service is asked for its part layout,
// each part is PUT as a raw byte range, and the file is marked complete.
func (c *Client) UploadFile(ctx context.Context, articleID string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	size, digest, err := fileDigest(f)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	name := filepath.Base(path)
	var loc Location
	req := &uploadInit{Name: name, Size: size, MD5: digest}
	if err := c.call(ctx, "initiate_upload", http.MethodPost, c.endpoint("account", "articles", articleID, "files"), req, &loc, http.StatusCreated); err != nil {
		return fmt.Errorf("initiating upload of %s: %w", name, err)
	}

	var file fileInfo
	if err := c.call(ctx, "get_file", http.MethodGet, loc.Location, nil, &file, http.StatusOK); err != nil {
		return fmt.Errorf("reading file entry of %s: %w", name, err)
	}
	if file.UploadURL == "" {
		return fmt.Errorf("file entry of %s has no upload url", name)
	}

	var info uploadInfo
	if err := c.call(ctx, "get_upload_parts", http.MethodGet, file.UploadURL, nil, &info, http.StatusOK); err != nil {
		return fmt.Errorf("reading upload parts of %s: %w", name, err)
	}

	for _, part := range info.Parts {
		if err := c.putPart(ctx, f, file.UploadURL, part); err != nil {
			return fmt.Errorf("uploading part %d of %s: %w", part.PartNo, name, err)
		}
	}

	fileID := strconv.FormatInt(file.ID, 10)
	if err := c.call(ctx, "complete_upload", http.MethodPost, c.endpoint("account", "articles", articleID, "files", fileID), nil, nil, http.StatusAccepted, http.StatusOK, http.StatusNoContent); err != nil {
		return fmt.Errorf("completing upload of %s: %w", name, err)
	}
	return nil
}

// putPart sends the inclusive byte range of one part.
func (c *Client) putPart(ctx context.Context, f *os.File, uploadURL string, part uploadPart) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRemoteRequest("upload_part", time.Since(start), err)
		}
	}()

	length := part.EndOffset - part.StartOffset + 1
	if part.StartOffset < 0 || length <= 0 {
		return fmt.Errorf("invalid part range [%d, %d]", part.StartOffset, part.EndOffset)
	}

	target := strings.TrimRight(uploadURL, "/") + "/" + strconv.Itoa(part.PartNo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, io.NewSectionReader(f, part.StartOffset, length))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// fileDigest returns the size and hex MD5 of the file, leaving the offset at 0.
func fileDigest(f *os.File) (int64, string, error) {
	h := md5.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
