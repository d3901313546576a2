package config

import (
	"errors"

	"github.com/rs/zerolog"
)

// LogLevel 是可以从环境变量解码的日志级别
type LogLevel zerolog.Level

// Decode 将字符串解码为日志级别
func (ll *LogLevel) Decode(value string) error {
	if level, err := zerolog.ParseLevel(value); err == nil && level != zerolog.NoLevel {
		*ll = LogLevel(level)
		return nil
	}
	*ll = LogLevel(zerolog.InfoLevel)
	return errors.New("unknown log level " + value)
}

// AsZeroLogLevel 转换为 zerolog.Level
func (ll LogLevel) AsZeroLogLevel() zerolog.Level {
	return zerolog.Level(ll)
}
