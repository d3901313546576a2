package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/AsterZephyr/screego-client/ws/outgoing"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
)

type fakeRoom struct {
	mu    sync.Mutex
	calls []string
	state ws.State
	done  chan struct{}
}

func newFakeRoom(state ws.State) *fakeRoom {
	return &fakeRoom{state: state, done: make(chan struct{})}
}

func (f *fakeRoom) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRoom) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRoom) Share(context.Context) error { f.record("share"); return nil }
func (f *fakeRoom) StopShare()                  { f.record("stop") }
func (f *fakeRoom) SetName(name string)         { f.record("name:" + name) }
func (f *fakeRoom) OwnerAction(action, target string) {
	f.record("owner:" + action + ":" + target)
}
func (f *fakeRoom) Dissolve()             { f.record("dissolve") }
func (f *fakeRoom) Exit()                 { f.record("exit"); close(f.done) }
func (f *fakeRoom) Snapshot() ws.State    { return f.state }
func (f *fakeRoom) Done() <-chan struct{} { return f.done }

func TestConsole_Commands(t *testing.T) {
	bob := xid.New()
	room := newFakeRoom(ws.State{Connected: true, ID: "R1", Users: []ws.User{
		{ID: xid.New(), Name: "me", You: true, Owner: true},
		{ID: bob, Name: "bob", Streaming: true},
	}})
	in := strings.NewReader(strings.Join([]string{
		"share",
		"",
		"name new name",
		"owner kick bob",
		"owner toggle " + bob.String(),
		"owner enable",
		"owner ban",
		"stop",
		"dissolve",
		"exit",
		"share",
	}, "\n"))
	out := &bytes.Buffer{}

	done := make(chan struct{})
	go func() {
		console(context.Background(), in, out, room)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("console did not return")
	}

	assert.Equal(t, []string{
		"share",
		"name:new name",
		"owner:" + outgoing.ActionKick + ":" + bob.String(),
		"owner:" + outgoing.ActionToggleShare + ":" + bob.String(),
		"owner:" + outgoing.ActionEnableAllShare + ":",
		"stop",
		"dissolve",
		"exit",
	}, room.Calls())
	assert.Contains(t, out.String(), "a target user is required")
}

func TestConsole_Users(t *testing.T) {
	room := newFakeRoom(ws.State{Connected: true, ID: "R1", Users: []ws.User{
		{ID: xid.New(), Name: "alice", You: true, Owner: true, CanShare: true},
	}})
	out := &bytes.Buffer{}
	assert.True(t, execute(context.Background(), out, room, "users"))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "you, owner")
}

func TestConsole_UnknownPrintsHelp(t *testing.T) {
	out := &bytes.Buffer{}
	assert.True(t, execute(context.Background(), out, newFakeRoom(ws.State{}), "bogus"))
	assert.Contains(t, out.String(), "commands:")
}

func TestConsole_EndsWithRoom(t *testing.T) {
	room := newFakeRoom(ws.State{})
	reader, writer := io.Pipe()
	defer writer.Close()

	done := make(chan struct{})
	go func() {
		console(context.Background(), reader, &bytes.Buffer{}, room)
		close(done)
	}()
	close(room.done)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("console did not return")
	}
}
