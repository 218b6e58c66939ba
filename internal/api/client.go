// Package api предоставляет HTTP-клиент для REST-бэкенда кофейни.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource возвращает текущий токен доступа. Пустая строка означает,
// что пользователь не аутентифицирован и заголовок не добавляется.
type TokenSource interface {
	Token() string
}

// FileUpload описывает файл, передаваемый в multipart-запросе.
type FileUpload struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом: базовый адрес,
// подстановку bearer-токена и разбор ошибок. Повторов запросов нет,
// каждая операция выполняется ровно один раз.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// NewClient создаёт клиент для бэкенда по указанному базовому адресу.
func NewClient(baseURL string, tokens TokenSource) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens: tokens,
	}
}

// BaseURL возвращает нормализованный базовый адрес бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUnauthorizedHook регистрирует обработчик ответа 401. Обработчик
// вызывается один раз на каждый такой ответ до возврата ошибки вызывающему;
// подписчик ожидается ровно один — менеджер сессии.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// Get выполняет GET-запрос и декодирует JSON-ответ в out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

// Post выполняет POST-запрос с JSON-телом.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, "application/json", payload, out)
}

// Put выполняет PUT-запрос с JSON-телом.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, "application/json", payload, out)
}

// Delete выполняет DELETE-запрос.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil)
}

// PostForm выполняет POST с телом в формате application/x-www-form-urlencoded.
// Используется для входа: бэкенд ожидает password-grant форму, а не JSON.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", body, out)
}

// PostMultipart выполняет POST с multipart-телом из полей и файла.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *FileUpload, out any) error {
	contentType, body, err := encodeMultipart(fields, file)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, contentType, body, out)
}

// PutMultipart выполняет PUT с multipart-телом из полей и файла.
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, file *FileUpload, out any) error {
	contentType, body, err := encodeMultipart(fields, file)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("api client not configured")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		httpErr := &HTTPError{Status: resp.StatusCode}

		var detail struct {
			Detail string `json:"detail"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&detail); decodeErr == nil {
			httpErr.Detail = detail.Detail
		}

		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}

		return httpErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func encodeJSON(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func encodeMultipart(fields map[string]string, file *FileUpload) (string, io.Reader, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return "", nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}

	if file != nil {
		field := file.Field
		if field == "" {
			field = "image_file"
		}
		part, err := mw.CreateFormFile(field, file.Name)
		if err != nil {
			return "", nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return "", nil, fmt.Errorf("copy file: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return mw.FormDataContentType(), buf, nil
}
