// Package objectstore uploads listing images to an HTTP object storage
// endpoint using signed multipart requests.
package objectstore

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderSignature = "X-Upload-Signature"
	HeaderTimestamp = "X-Upload-Timestamp"
)

type Client struct {
	endpoint   string
	bucket     string
	secret     []byte
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithNow(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

func New(endpoint, bucket, secret string, opts ...Option) (*Client, error) {
	if endpoint == "" || bucket == "" {
		return nil, errors.New("object store endpoint and bucket are required")
	}
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		bucket:     bucket,
		secret:     []byte(secret),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign returns the hex HMAC-SHA256 of bucket, object name, unix timestamp
// and content digest, newline separated.
func Sign(secret []byte, bucket, name string, ts int64, data []byte) string {
	digest := sha256.Sum256(data)
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s\n%s\n%d\n%s", bucket, name, ts, hex.EncodeToString(digest[:]))
	return hex.EncodeToString(mac.Sum(nil))
}

// Upload posts data as the "file" part and returns the public URL from the
// response body.
func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" {
		return "", errors.New("object name is empty")
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("name", name); err != nil {
		return "", err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	ts := c.now().Unix()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/buckets/"+c.bucket+"/objects", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, Sign(c.secret, c.bucket, name, ts, data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload %s: decode response: %w", name, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload %s: response has no url", name)
	}
	return out.URL, nil
}
