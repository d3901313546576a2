package logger

import (
	"os"
	"time"

	"github.com/AsterZephyr/screego-client/config/mode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init 初始化全局日志记录器
// 开发模式下输出到控制台，生产模式下输出 JSON
func Init(lvl zerolog.Level) {
	if mode.Get() == mode.Prod {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.SetGlobalLevel(lvl)
	log.Debug().Str("level", lvl.String()).Msg("Logger initialized")
}
