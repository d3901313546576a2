package cmd

import (
	"errors"
	"time"

	"github.com/AsterZephyr/screego-client/api"
	"github.com/AsterZephyr/screego-client/settings"
	"github.com/AsterZephyr/screego-client/util"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/pion/randutil"
	"github.com/urfave/cli/v2"
)

var nameFlag = &cli.StringFlag{Name: "name", Usage: "user name shown to the other participants"}

func joinCmd() *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "join an existing room",
		ArgsUsage: "[room id]",
		Flags:     []cli.Flag{nameFlag},
		Action: func(c *cli.Context) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				id = settings.RoomIDs{Store: s.store}.Get()
			}
			if id == "" {
				return errors.New("room id required")
			}
			if err := s.login(c.Context); err != nil {
				return err
			}
			return s.run(c, outgoing.Join{ID: id, UserName: s.userName(c)})
		},
	}
}

func createCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a room and join it as owner",
		Flags: []cli.Flag{
			nameFlag,
			&cli.StringFlag{Name: "id", Usage: "room id, random when empty"},
			&cli.BoolFlag{Name: "join-if-exist", Usage: "join the room if it already exists"},
			&cli.BoolFlag{Name: "close-on-owner-leave", Usage: "close the room when the owner leaves"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if err := s.login(c.Context); err != nil {
				return err
			}
			conf, err := s.api.Config(c.Context)
			if err != nil {
				return err
			}
			if conf.AuthMode == "all" && !conf.LoggedIn {
				return errors.New("the server requires a login to create rooms, set SCREEGO_CLIENT_USER")
			}
			return s.run(c, createIntent(c, conf, s.userName(c)))
		},
	}
}

// createIntent 根据命令行参数和服务器配置生成 create 消息
func createIntent(c *cli.Context, conf api.UIConfig, name string) outgoing.Create {
	id := c.String("id")
	if id == "" {
		id = conf.RoomName
	}
	if id == "" {
		id = util.NewRoomName(randutil.NewMathRandomGenerator())
	}
	closeOnOwnerLeave := conf.CloseRoomWhenOwnerLeaves
	if c.IsSet("close-on-owner-leave") {
		closeOnOwnerLeave = c.Bool("close-on-owner-leave")
	}
	return outgoing.Create{
		Mode:              api.RoomMode(conf),
		ID:                id,
		JoinIfExist:       c.Bool("join-if-exist"),
		CloseOnOwnerLeave: closeOnOwnerLeave,
		UserName:          name,
	}
}

func roomsCmd() *cli.Command {
	return &cli.Command{
		Name:  "rooms",
		Usage: "list the open rooms",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "refresh the list periodically"},
		},
		Action: func(c *cli.Context) error {
			conf := setup()
			client, err := api.New(conf.ServerURL)
			if err != nil {
				return err
			}
			if !c.Bool("watch") {
				printRooms(c.App.Writer, client.Rooms(c.Context))
				return nil
			}
			client.Poll(c.Context, conf.RoomListInterval, func(rooms []api.RoomInfo) {
				printRooms(c.App.Writer, rooms)
			})
			return nil
		},
	}
}

func since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Since(t).Truncate(time.Second).String()
}
