// Package client talks to the commons HTTP API on behalf of one player.
package client

import (
	"bytes"
	"commons/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is an HTTP client for the v1 API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of the client acting as the token's player
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// WithHTTPClient returns a copy of the client using hc for requests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

func (c *Client) RegisterPlayer(ctx context.Context, label string) (*model.RegisterPlayerResponse, error) {
	var resp model.RegisterPlayerResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/players", &model.RegisterPlayerRequest{Label: label}, &resp)
	return &resp, err
}

// CreateCode ensures the code exists; an empty code asks the server to generate one
func (c *Client) CreateCode(ctx context.Context, code string) (*model.GameCode, error) {
	var anchor model.GameCode
	err := c.do(ctx, http.MethodPost, "/v1/codes", map[string]string{"code": code}, &anchor)
	return &anchor, err
}

func (c *Client) Join(ctx context.Context, code, nickname string) (*model.GameCode, error) {
	var anchor model.GameCode
	err := c.do(ctx, http.MethodPost, "/v1/codes/"+url.PathEscape(code)+"/join", map[string]string{"nickname": nickname}, &anchor)
	return &anchor, err
}

func (c *Client) ListPlayers(ctx context.Context, code string) ([]*model.PlayerProfile, error) {
	var resp struct {
		Players []*model.PlayerProfile `json:"players"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/codes/"+url.PathEscape(code)+"/players", nil, &resp)
	return resp.Players, err
}

func (c *Client) StartSession(ctx context.Context, code string, req *model.StartSessionRequest) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodPost, "/v1/codes/"+url.PathEscape(code)+"/sessions", req, &session)
	return &session, err
}

func (c *Client) CurrentRound(ctx context.Context, code string) (*model.Round, error) {
	var round model.Round
	err := c.do(ctx, http.MethodGet, "/v1/codes/"+url.PathEscape(code)+"/round", nil, &round)
	return &round, err
}

// Sessions lists the caller's sessions; scope is owned, played, all or active
func (c *Client) Sessions(ctx context.Context, scope string) ([]*model.Session, error) {
	var resp struct {
		Sessions []*model.Session `json:"sessions"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/sessions?scope="+url.QueryEscape(scope), nil, &resp)
	return resp.Sessions, err
}

func (c *Client) Session(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session)
	return &session, err
}

func (c *Client) Rounds(ctx context.Context, sessionID string) ([]*model.Round, error) {
	var resp struct {
		Rounds []*model.Round `json:"rounds"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(sessionID)+"/rounds", nil, &resp)
	return resp.Rounds, err
}

func (c *Client) Scores(ctx context.Context, sessionID string) ([]model.ScoreEntry, error) {
	var resp struct {
		Scores []model.ScoreEntry `json:"scores"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(sessionID)+"/scores", nil, &resp)
	return resp.Scores, err
}

func (c *Client) Round(ctx context.Context, roundID string) (*model.RoundInfo, error) {
	var info model.RoundInfo
	err := c.do(ctx, http.MethodGet, "/v1/rounds/"+url.PathEscape(roundID), nil, &info)
	return &info, err
}

func (c *Client) SubmitMove(ctx context.Context, roundID string, amount model.ResourceAmount) (*model.Move, error) {
	var move model.Move
	err := c.do(ctx, http.MethodPost, "/v1/rounds/"+url.PathEscape(roundID)+"/moves", &model.SubmitMoveRequest{Amount: amount}, &move)
	return &move, err
}

// CloseRound asks the server to close a round. Status awaiting_moves is a normal answer.
func (c *Client) CloseRound(ctx context.Context, roundID string) (*model.CloseResponse, error) {
	var resp model.CloseResponse
	err := c.do(ctx, http.MethodPost, "/v1/rounds/"+url.PathEscape(roundID)+"/close", nil, &resp)
	return &resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
