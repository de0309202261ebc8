package utils

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (compatible; movietable/1.0)"

// HTTPClient HTTP客户端
type HTTPClient struct {
	httpClient *http.Client
}

// NewHTTPClient 创建HTTP客户端，timeout 为 0 表示不设超时
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get 发送GET请求
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	return c.httpClient.Do(req)
}

// GetJSON 发送GET请求并解析JSON响应
func (c *HTTPClient) GetJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(target); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// GetBytes 发送GET请求并读取至多 limit 字节，返回内容及 Content-Type
func (c *HTTPClient) GetBytes(ctx context.Context, url string, limit int64) ([]byte, string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{Code: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, "", err
	}
	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("读取响应失败: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, "", fmt.Errorf("响应超过 %d 字节", limit)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// StatusError 非 200 响应
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("请求失败，状态码: %d", e.Code)
}

// decodeBody 按 Content-Encoding 解压响应体
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("创建gzip读取器失败: %w", err)
		}
		return reader, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
