package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AsterZephyr/screego-client/api"
	"github.com/AsterZephyr/screego-client/capture"
	"github.com/AsterZephyr/screego-client/config"
	"github.com/AsterZephyr/screego-client/notify"
	"github.com/AsterZephyr/screego-client/record"
	"github.com/AsterZephyr/screego-client/router"
	"github.com/AsterZephyr/screego-client/rtc"
	"github.com/AsterZephyr/screego-client/settings"
	"github.com/AsterZephyr/screego-client/ws"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// session 汇总一次房间连接需要的协作者
type session struct {
	conf     config.Config
	api      *api.Client
	store    *settings.Store
	prefs    settings.Settings
	notifier *notify.Logger
}

func newSession() (*session, error) {
	conf := setup()
	client, err := api.New(conf.ServerURL)
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(conf.SettingsFile)
	if err != nil {
		return nil, err
	}
	prefs, err := store.Settings()
	if err != nil {
		return nil, err
	}
	return &session{
		conf:     conf,
		api:      client,
		store:    store,
		prefs:    prefs,
		notifier: notify.NewLogger(conf.Language),
	}, nil
}

// login 在配置了用户时登录，密码为空且标准输入是终端时提示输入
func (s *session) login(ctx context.Context) error {
	if s.conf.User == "" {
		return nil
	}
	password := s.conf.Password
	if password == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("SCREEGO_CLIENT_PASSWORD is required when stdin is not a terminal")
		}
		fmt.Fprintf(os.Stderr, "Password for %s: ", s.conf.User)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	}
	if err := s.api.Login(ctx, s.conf.User, password); err != nil {
		return err
	}
	log.Info().Str("user", s.conf.User).Msg("logged in")
	return nil
}

func (s *session) options() (ws.Options, error) {
	factory, err := rtc.NewFactory()
	if err != nil {
		return ws.Options{}, err
	}

	opts := ws.Options{
		URL:          s.conf.StreamURL(),
		Jar:          s.api.Jar(),
		PingPeriod:   s.conf.PingPeriod,
		PongWait:     s.conf.PongWait,
		ForceRelay:   s.conf.ForceTurn,
		NewTransport: factory,
		Quality:      s.prefs.Quality(),
		PreferCodec:  s.prefs.ResolveCodec(),
		Notifier:     s.notifier,
		RoomIDs:      settings.RoomIDs{Store: s.store},
		Sink:         record.Drain{},
	}
	if s.conf.CaptureVideo != "" {
		opts.Source = capture.FileSource{Video: s.conf.CaptureVideo, Audio: s.conf.CaptureAudio}
	}
	if s.conf.RecordDir != "" {
		if err := os.MkdirAll(s.conf.RecordDir, 0o755); err != nil {
			return ws.Options{}, fmt.Errorf("create record dir: %w", err)
		}
		opts.Sink = &record.Recorder{Dir: s.conf.RecordDir}
	}
	return opts, nil
}

// userName 返回命令行指定的用户名，未指定时使用保存的设置
func (s *session) userName(c *cli.Context) string {
	if name := c.String("name"); name != "" {
		return name
	}
	return s.prefs.Name
}

// run 连接房间并处理控制台命令，直到房间结束或收到中断信号
func (s *session) run(c *cli.Context, intent outgoing.Message) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := s.options()
	if err != nil {
		return err
	}
	room, err := ws.Connect(ctx, opts, intent)
	if err != nil {
		return err
	}
	state := room.Snapshot()
	log.Info().Str("room", state.ID).Int("users", len(state.Users)).Msg("joined room")

	if s.conf.StatusAddress != "" {
		srv := router.Start(s.conf.StatusAddress, router.Router(room.Snapshot, c.App.Version))
		defer srv.Close()
	}

	go console(ctx, os.Stdin, os.Stdout, room)

	select {
	case <-ctx.Done():
		room.Exit()
	case <-room.Done():
	}
	if recorder, ok := opts.Sink.(*record.Recorder); ok {
		recorder.Wait()
	}

	if outcome, ok := room.Outcome(); ok && outcome.Severity == ws.Failure {
		return cli.Exit(fmt.Sprintf("room closed: %s", outcome.Reason), 1)
	}
	return nil
}
