package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/AsterZephyr/screego-client/api"
	"github.com/AsterZephyr/screego-client/ws"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(header)
	return t
}

func printRooms(out io.Writer, rooms []api.RoomInfo) {
	t := newTable(out, table.Row{"Room", "Users", "Open for"})
	for _, room := range rooms {
		t.AppendRow(table.Row{room.ID, room.UserCount, since(room.CreatedAt)})
	}
	t.AppendFooter(table.Row{"", len(rooms), ""})
	t.Render()
}

func printUsers(out io.Writer, state ws.State) {
	t := newTable(out, table.Row{"ID", "Name", "", "Sharing", "Can share"})
	for _, user := range state.Users {
		marker := ""
		switch {
		case user.You && user.Owner:
			marker = "you, owner"
		case user.You:
			marker = "you"
		case user.Owner:
			marker = "owner"
		}
		t.AppendRow(table.Row{user.ID.String(), user.Name, marker, yesNo(user.Streaming), yesNo(user.CanShare)})
	}
	t.Render()
	for _, stream := range state.Inbound {
		fmt.Fprintf(out, "watching %s: %d track(s)\n", stream.PeerID, len(stream.Tracks()))
	}
}

func printSettings(out io.Writer, keys []string, value func(string) interface{}) {
	sort.Strings(keys)
	t := newTable(out, table.Row{"Key", "Value"})
	for _, key := range keys {
		t.AppendRow(table.Row{key, value(key)})
	}
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
