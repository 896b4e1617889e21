package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// TokenSource returns the current bearer token, or "" when unauthenticated.
// It is called once per request so a logout between calls is always observed.
type TokenSource func() string

// Client talks to the document question-answering backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   TokenSource
}

// Document is one previously uploaded document as listed by the history
// endpoint.
type Document struct {
	ID        int64     `json:"document_id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatEntry is one stored question/answer exchange for a document.
type ChatEntry struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type uploadResponse struct {
	DocumentID int64 `json:"document_id"`
}

type promptsResponse struct {
	DocumentID       int64    `json:"document_id"`
	SuggestedPrompts []string `json:"suggested_prompts"`
}

type askRequest struct {
	Question   string `json:"question"`
	DocumentID int64  `json:"document_id"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Token:   token,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Signup registers a new account and returns its bearer token.
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (string, error) {
	var out authResponse
	err := c.doJSON(ctx, http.MethodPost, path, authRequest{Email: email, Password: password}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &NetworkError{Op: path, Err: fmt.Errorf("empty access token in response")}
	}
	return out.AccessToken, nil
}

// Upload submits a document as multipart form data and returns the id the
// server assigned to it.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (int64, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	var out uploadResponse
	if err := c.send(req, "/upload", &out); err != nil {
		return 0, err
	}
	return out.DocumentID, nil
}

// History returns every document uploaded by the current account.
func (c *Client) History(ctx context.Context) ([]Document, error) {
	var out []Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat returns the stored exchanges for one document, oldest first.
func (c *Client) Chat(ctx context.Context, documentID int64) ([]ChatEntry, error) {
	var out []ChatEntry
	path := fmt.Sprintf("/documents/%d/chat", documentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SuggestedPrompts returns the server's starter questions for one document.
func (c *Client) SuggestedPrompts(ctx context.Context, documentID int64) ([]string, error) {
	var out promptsResponse
	path := fmt.Sprintf("/documents/%d/suggested-prompts", documentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.SuggestedPrompts, nil
}

// Ask submits a question about a document and returns the answer.
func (c *Client) Ask(ctx context.Context, documentID int64, question string) (string, error) {
	var out askResponse
	err := c.doJSON(ctx, http.MethodPost, "/ask", askRequest{Question: question, DocumentID: documentID}, &out)
	if err != nil {
		return "", err
	}
	return out.Answer, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)
	return c.send(req, path, out)
}

func (c *Client) setAuth(req *http.Request) {
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("invalid response body: %w", err)}
	}
	return nil
}

func statusError(op string, status int, payload []byte) error {
	var detail struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(payload, &detail)
	msg := detail.Detail
	if msg == "" {
		msg = detail.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Message: msg}
	case status == http.StatusNotFound:
		if msg == "" {
			msg = strings.TrimPrefix(op, "/")
		}
		return &NotFoundError{Resource: msg}
	default:
		if msg == "" {
			msg = string(payload)
		}
		return &NetworkError{Op: op, Err: fmt.Errorf("status %d: %s", status, msg)}
	}
}
