package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/rs/zerolog/log"
)

// room 是控制台可以操作的房间
type room interface {
	Share(ctx context.Context) error
	StopShare()
	SetName(name string)
	OwnerAction(action, targetUserID string)
	Dissolve()
	Exit()
	Snapshot() ws.State
	Done() <-chan struct{}
}

var ownerActions = map[string]string{
	"stop":    outgoing.ActionStopShare,
	"toggle":  outgoing.ActionToggleShare,
	"kick":    outgoing.ActionKick,
	"ban":     outgoing.ActionBan,
	"enable":  outgoing.ActionEnableAllShare,
	"disable": outgoing.ActionDisableAllShare,
}

const help = `commands:
  share                  start sharing
  stop                   stop sharing
  name <name>            change your name
  users                  list the participants
  owner <action> [user]  stop|toggle|kick|ban <user>, enable|disable for everyone
  dissolve               close the room for everyone
  exit                   leave the room`

// console 从 in 读取命令并作用于房间，房间结束或读到 exit 时返回
func console(ctx context.Context, in io.Reader, out io.Writer, r room) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-r.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-r.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !execute(ctx, out, r, line) {
				return
			}
		}
	}
}

// execute 执行一行命令，返回 false 表示控制台应结束
func execute(ctx context.Context, out io.Writer, r room, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "share":
		if err := r.Share(ctx); err != nil {
			log.Debug().Err(err).Msg("share")
		}
	case "stop":
		r.StopShare()
	case "name":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: name <name>")
			return true
		}
		r.SetName(strings.Join(fields[1:], " "))
	case "users":
		printUsers(out, r.Snapshot())
	case "owner":
		ownerCommand(out, r, fields[1:])
	case "dissolve":
		r.Dissolve()
	case "exit", "quit":
		r.Exit()
		return false
	default:
		fmt.Fprintln(out, help)
	}
	return true
}

func ownerCommand(out io.Writer, r room, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(out, help)
		return
	}
	action, ok := ownerActions[args[0]]
	if !ok {
		fmt.Fprintf(out, "unknown owner action %q\n", args[0])
		return
	}
	target := ""
	if len(args) > 1 {
		target = resolveUser(r.Snapshot(), strings.Join(args[1:], " "))
	}
	individual := action != outgoing.ActionEnableAllShare && action != outgoing.ActionDisableAllShare
	if individual && target == "" {
		fmt.Fprintln(out, "a target user is required")
		return
	}
	r.OwnerAction(action, target)
}

// resolveUser 将用户名或 ID 转换为用户 ID，找不到时原样返回
func resolveUser(state ws.State, nameOrID string) string {
	for _, user := range state.Users {
		if user.ID.String() == nameOrID || user.Name == nameOrID {
			return user.ID.String()
		}
	}
	return nameOrID
}
