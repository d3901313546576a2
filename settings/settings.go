// Package settings 将本地用户的偏好保存在 YAML 文件中
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/AsterZephyr/screego-client/capture"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Resolution 是捕获画面的分辨率
type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution1440p Resolution = "1440p"
)

// Size 返回画面尺寸，未知值按 720p
func (r Resolution) Size() (width, height int) {
	switch r {
	case Resolution1080p:
		return 1920, 1080
	case Resolution1440p:
		return 2560, 1440
	default:
		return 1280, 720
	}
}

// Codec 是偏好的视频编解码器，MimeType 为空或 "default" 时保留传输默认顺序
type Codec struct {
	MimeType    string `mapstructure:"mimeType"`
	SDPFmtpLine string `mapstructure:"sdpFmtpLine"`
}

// Settings 是保存的偏好
type Settings struct {
	Name        string     `mapstructure:"name"`
	PreferCodec Codec      `mapstructure:"preferCodec"`
	FrameRate   int        `mapstructure:"framerate"`
	Resolution  Resolution `mapstructure:"resolution"`
	DisplayMode string     `mapstructure:"displayMode"`
	Room        string     `mapstructure:"room"`
}

// Quality 转换为捕获质量
func (s Settings) Quality() capture.Quality {
	width, height := s.Resolution.Size()
	return capture.Quality{FrameRate: s.FrameRate, Width: width, Height: height}
}

// ResolveCodec 返回偏好的编解码器，默认占位值返回 nil
func (s Settings) ResolveCodec() *webrtc.RTPCodecCapability {
	mime := strings.TrimSpace(s.PreferCodec.MimeType)
	if mime == "" || strings.EqualFold(mime, "default") {
		return nil
	}
	return &webrtc.RTPCodecCapability{MimeType: mime, SDPFmtpLine: s.PreferCodec.SDPFmtpLine}
}

// Store 读写设置文件
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	file string
}

// Open 加载设置文件，文件不存在时使用默认值
func Open(file string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")

	v.SetDefault("name", "")
	v.SetDefault("preferCodec.mimeType", "default")
	v.SetDefault("preferCodec.sdpFmtpLine", "")
	v.SetDefault("framerate", 30)
	v.SetDefault("resolution", string(Resolution720p))
	v.SetDefault("displayMode", "fit")
	v.SetDefault("room", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings %s: %w", file, err)
		}
		log.Debug().Str("file", file).Msg("settings file not found, using defaults")
	}
	return &Store{v: v, file: file}, nil
}

// Settings 返回当前偏好
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var settings Settings
	if err := s.v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}

// Set 修改一个键并写回文件
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	return s.save()
}

func (s *Store) save() error {
	if err := s.v.WriteConfigAs(s.file); err != nil {
		return fmt.Errorf("write settings %s: %w", s.file, err)
	}
	return nil
}

// Keys 列出全部设置键
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.AllKeys()
}

// Value 返回键的原始值
func (s *Store) Value(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Get(key)
}

// RoomIDs 将 Store 适配为 ws.RoomIDStore
type RoomIDs struct {
	Store *Store
}

// Get 返回最近一次进入的房间 ID
func (r RoomIDs) Get() string {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	return r.Store.v.GetString("room")
}

// Set 保存进入的房间 ID
func (r RoomIDs) Set(id string) {
	if err := r.Store.Set("room", id); err != nil {
		log.Warn().Err(err).Msg("could not persist room id")
	}
}

// Clear 删除保存的房间 ID
func (r RoomIDs) Clear() {
	r.Set("")
}
