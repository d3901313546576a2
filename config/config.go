package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

var (
	prefix = "screego_client"
	files  = []string{"screego-client.config.development.local", "screego-client.config.development", "screego-client.config.local", "screego-client.config"}
)

// Config 表示客户端的运行配置，全部来自环境变量
type Config struct {
	LogLevel LogLevel `default:"info" split_words:"true"`

	// ServerURL 协调服务器的 HTTP 地址，控制通道为 <ServerURL>/stream
	ServerURL string `default:"http://localhost:5050" split_words:"true"`
	// ForceTurn 强制只使用中继候选
	ForceTurn bool `default:"false" split_words:"true"`
	// StatusAddress 本地状态服务监听地址，为空时不启动
	StatusAddress string `default:"" split_words:"true"`
	SettingsFile  string `default:"screego-client.yaml" split_words:"true"`

	CaptureVideo string `default:"" split_words:"true"`
	CaptureAudio string `default:"" split_words:"true"`
	RecordDir    string `default:"" split_words:"true"`

	User     string `default:""`
	Password string `default:""`
	Language string `default:"en"`

	PingPeriod       time.Duration `default:"5s" split_words:"true"`
	PongWait         time.Duration `default:"20s" split_words:"true"`
	RoomListInterval time.Duration `default:"30s" split_words:"true"`
}

// FutureLog 表示在日志器初始化之前产生的日志
type FutureLog struct {
	Level zerolog.Level
	Msg   string
}

// StreamURL 返回控制通道的 websocket 地址
func (c Config) StreamURL() string {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/stream"
	return u.String()
}

// Get 加载配置文件和环境变量
func Get() (Config, []FutureLog) {
	var logs []FutureLog
	dir, _ := os.Getwd()
	for _, file := range files {
		path := dir + string(os.PathSeparator) + file
		err := godotenv.Load(path)
		if err == nil {
			logs = append(logs, FutureLog{
				Level: zerolog.InfoLevel,
				Msg:   fmt.Sprintf("Loading file %s", path),
			})
		} else if !os.IsNotExist(err) {
			logs = append(logs, FutureLog{
				Level: zerolog.FatalLevel,
				Msg:   fmt.Sprintf("cannot load file %s: %s", path, err),
			})
		}
	}

	config := Config{}
	err := envconfig.Process(prefix, &config)
	if err != nil {
		logs = append(logs,
			FutureLog{Level: zerolog.FatalLevel, Msg: fmt.Sprintf("cannot parse env params: %s", err)})
		return config, logs
	}

	if _, err := url.ParseRequestURI(config.ServerURL); err != nil {
		logs = append(logs, FutureLog{
			Level: zerolog.FatalLevel,
			Msg:   fmt.Sprintf("invalid SCREEGO_CLIENT_SERVER_URL %q: %s", config.ServerURL, err),
		})
	}

	if config.PingPeriod <= 0 || config.PongWait <= config.PingPeriod {
		logs = append(logs, FutureLog{
			Level: zerolog.FatalLevel,
			Msg:   "SCREEGO_CLIENT_PONG_WAIT must be greater than SCREEGO_CLIENT_PING_PERIOD",
		})
	}

	if config.Password != "" && config.User == "" {
		logs = append(logs, FutureLog{
			Level: zerolog.WarnLevel,
			Msg:   "SCREEGO_CLIENT_PASSWORD is set without SCREEGO_CLIENT_USER, ignoring it",
		})
	}

	return config, logs
}
