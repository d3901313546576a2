// Package api 访问协调服务器的 HTTP 接口
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/rs/zerolog/log"
)

// UIConfig 是 /config 的响应
type UIConfig struct {
	AuthMode                 string `json:"authMode"`
	User                     string `json:"user"`
	LoggedIn                 bool   `json:"loggedIn"`
	Version                  string `json:"version"`
	RoomName                 string `json:"roomName"`
	CloseRoomWhenOwnerLeaves bool   `json:"closeRoomWhenOwnerLeaves"`
}

// RoomInfo 是房间列表中的一项
type RoomInfo struct {
	ID        string    `json:"id"`
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client 访问协调服务器，cookie jar 保存登录会话
// 并与控制通道的拨号共用
type Client struct {
	base *url.URL
	http *http.Client
}

// New 为 base 地址的协调服务器创建客户端
func New(base string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: u, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}, nil
}

// Jar 返回客户端的 cookie jar
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

// Config 获取 /config
func (c *Client) Config(ctx context.Context) (UIConfig, error) {
	var conf UIConfig
	if err := c.getJSON(ctx, "/config", &conf); err != nil {
		return UIConfig{}, err
	}
	return conf, nil
}

// Rooms 获取当前房间列表，任何失败都返回空列表
func (c *Client) Rooms(ctx context.Context) []RoomInfo {
	rooms := []RoomInfo{}
	if err := c.getJSON(ctx, "/rooms", &rooms); err != nil {
		log.Debug().Err(err).Msg("room list not available")
		return []RoomInfo{}
	}
	return rooms
}

// Login 使用用户名和密码登录，会话 cookie 保存在 jar 中
func (c *Client) Login(ctx context.Context, user, pass string) error {
	form := url.Values{"user": {user}, "pass": {pass}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/login"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message != "" {
			return fmt.Errorf("login: %s", body.Message)
		}
		return fmt.Errorf("login: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return nil
}

// Poll 立即以房间列表调用 fn，之后每隔 interval 调用一次，直到 ctx 结束
func (c *Client) Poll(ctx context.Context, interval time.Duration, fn func([]RoomInfo)) {
	fn(c.Rooms(ctx))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(c.Rooms(ctx))
		}
	}
}

// RoomMode 选择新房间的连接模式
func RoomMode(conf UIConfig) outgoing.RoomMode {
	if conf.LoggedIn {
		return outgoing.RoomModeTURN
	}
	if conf.AuthMode == "turn" {
		return outgoing.RoomModeSTUN
	}
	return outgoing.RoomModeTURN
}
