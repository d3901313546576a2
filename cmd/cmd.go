package cmd

import (
	"fmt"
	"os"

	"github.com/AsterZephyr/screego-client/config"
	"github.com/AsterZephyr/screego-client/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// Run 解析命令行并执行对应的命令
func Run(version, commitHash string) {
	app := &cli.App{
		Name:    "screego-client",
		Usage:   "share and watch screens in a screego room",
		Version: fmt.Sprintf("%s@%s", version, commitHash),
		Commands: []*cli.Command{
			joinCmd(),
			createCmd(),
			roomsCmd(),
			settingsCmd(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("app error")
	}
}

// setup 加载配置并初始化日志，配置有致命错误时退出
func setup() config.Config {
	conf, errs := config.Get()
	logger.Init(conf.LogLevel.AsZeroLogLevel())

	exit := false
	for _, err := range errs {
		log.WithLevel(err.Level).Msg(err.Msg)
		exit = exit || err.Level == zerolog.FatalLevel || err.Level == zerolog.PanicLevel
	}
	if exit {
		os.Exit(1)
	}
	return conf
}
