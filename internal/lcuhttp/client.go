// Package lcuhttp — одноразовые HTTP-запросы к LCU и Live Client API.
//
// Ошибки никогда не возвращаются как error: вместо них Do отдаёт
// ErrorBody(500, ...), так же, как отвечает сам клиент LCU.
package lcuhttp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	ServiceError = "LCU service error."
	RequestError = "Teemo request error."
)

type Options struct {
	// BaseURL — например https://127.0.0.1:58929/
	BaseURL string
	Token   string
	// Auth — добавлять Basic riot:<token>; у Live API авторизации нет
	Auth bool
	// 0 = без таймаута
	Timeout            time.Duration
	InsecureSkipVerify bool
	Logger             *slog.Logger
}

type Client struct {
	http  *http.Client
	base  string
	token string
	auth  bool
	log   *slog.Logger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tr := &http.Transport{
		// только loopback, без системного прокси
		Proxy: nil,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // самоподписанный сертификат LCU
		},
		ForceAttemptHTTP2: true,
		IdleConnTimeout:   90 * time.Second,
	}
	return &Client{
		http:  &http.Client{Transport: tr, Timeout: opts.Timeout},
		base:  strings.TrimRight(opts.BaseURL, "/") + "/",
		token: opts.Token,
		auth:  opts.Auth,
		log:   logger,
	}
}

// BasicAuth — значение заголовка Authorization для LCU.
func BasicAuth(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("riot:"+token))
}

// ErrorBody — структурированная ошибка вместо error.
func ErrorBody(code int, message string) map[string]any {
	return map[string]any{"code": code, "message": message}
}

// URL — полный адрес для path (ведущий "/" допускается).
func (c *Client) URL(path string) string {
	return c.base + strings.TrimLeft(path, "/")
}

// Do — выполняет запрос и возвращает разобранный JSON.
// Пустое тело ответа (например 204) даёт nil.
func (c *Client) Do(ctx context.Context, method, path string, body any) any {
	if c.auth && c.token == "" {
		return ErrorBody(http.StatusInternalServerError, ServiceError)
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.log.Warn("encode request body", "method", method, "path", path, "err", err)
			return ErrorBody(http.StatusInternalServerError, RequestError)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), c.URL(path), rd)
	if err != nil {
		c.log.Warn("build request", "method", method, "path", path, "err", err)
		return ErrorBody(http.StatusInternalServerError, RequestError)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("Content-Type", "application/json")
	if c.auth {
		req.Header.Set("Authorization", BasicAuth(c.token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "err", err)
		return ErrorBody(http.StatusInternalServerError, c.failMessage())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("read response", "method", method, "path", path, "err", err)
		return ErrorBody(http.StatusInternalServerError, c.failMessage())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("response is not json", "method", method, "path", path,
			"status", resp.StatusCode, "err", err)
		return ErrorBody(http.StatusInternalServerError, c.failMessage())
	}
	return out
}

func (c *Client) failMessage() string {
	if c.auth {
		return ServiceError
	}
	return RequestError
}
