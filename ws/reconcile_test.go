package ws

import (
	"testing"

	"github.com/AsterZephyr/screego-client/notify"
	"github.com/stretchr/testify/assert"
)

func TestClassifyClose(t *testing.T) {
	tests := []struct {
		reason string
		want   Outcome
	}{
		{reason: "", want: Outcome{Severity: Silent}},
		{reason: "  ", want: Outcome{Severity: Silent, Reason: "  "}},
		{reason: CloseRoomDissolved, want: Outcome{Severity: Informational, Reason: CloseRoomDissolved, Key: notify.RoomDissolvedByOwner}},
		{reason: CloseKicked, want: Outcome{Severity: Failure, Reason: CloseKicked, Key: notify.KickedByOwner}},
		{reason: CloseUserLeft, want: Outcome{Severity: Failure, Reason: CloseUserLeft, Key: notify.UserLeft}},
		{reason: "room with id R1 does not exist", want: Outcome{Severity: Failure, Reason: "room with id R1 does not exist", Key: notify.RoomNotExist, ClearRoomID: true}},
		{reason: "read end", want: Outcome{Severity: Failure, Reason: "read end"}},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyClose(tt.reason))
		})
	}
}

func TestClassifyError(t *testing.T) {
	outcome, terminal := ClassifyError("room with id R1 does not exist")
	assert.True(t, terminal)
	assert.True(t, outcome.ClearRoomID)
	assert.Equal(t, notify.RoomNotExist, outcome.Key)

	outcome, terminal = ClassifyError("room with id R1 does already exist")
	assert.True(t, terminal)
	assert.True(t, outcome.ClearRoomID)
	assert.Equal(t, notify.RoomAlreadyExists, outcome.Key)

	outcome, terminal = ClassifyError("you do not have permission to share screen")
	assert.False(t, terminal)
	assert.False(t, outcome.ClearRoomID)
	assert.Equal(t, notify.NoPermissionToShare, outcome.Key)

	outcome, terminal = ClassifyError("something else")
	assert.False(t, terminal)
	assert.Equal(t, "", outcome.Key)
	notice, ok := outcome.Notice()
	assert.True(t, ok)
	assert.Equal(t, notify.Notice{Level: notify.Error, Raw: "something else"}, notice)
}

func TestOutcome_Notice(t *testing.T) {
	_, ok := Outcome{Severity: Silent, Reason: "x"}.Notice()
	assert.False(t, ok)

	notice, ok := Outcome{Severity: Informational, Key: notify.RoomDissolvedByOwner}.Notice()
	assert.True(t, ok)
	assert.Equal(t, notify.Info, notice.Level)
}
