package ws

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_ReplaceMembershipDoesNotMerge(t *testing.T) {
	a, b := xid.New(), xid.New()
	payload := []User{{ID: a, Name: "a", You: true}, {ID: b, Name: "b"}}

	s := State{}.ReplaceMembership(RoomInfo{ID: "R1", Users: payload})
	s = s.ReplaceMembership(RoomInfo{ID: "R1", Users: []User{{ID: b, Name: "b", Owner: true}}})

	assert.True(t, s.Connected)
	assert.Equal(t, []User{{ID: b, Name: "b", Owner: true}}, s.Users)
	_, ok := s.Local()
	assert.False(t, ok)

	payload[0].Name = "changed"
	first := State{}.ReplaceMembership(RoomInfo{ID: "R1", Users: payload})
	payload[0].Name = "again"
	assert.Equal(t, "changed", first.Users[0].Name)
}

func TestState_IsImmutable(t *testing.T) {
	stream := &InboundStream{ID: xid.New()}
	base := State{Connected: true}
	added := base.AddInbound(stream)

	assert.Empty(t, base.Inbound)
	require.Len(t, added.Inbound, 1)

	removed := added.RemoveInbound(stream.ID)
	assert.Empty(t, removed.Inbound)
	assert.Len(t, added.Inbound, 1)

	presenting := base.WithPresenting(true)
	assert.False(t, base.Presenting)
	assert.True(t, presenting.Presenting)
}

func TestState_AddInboundReplacesSameID(t *testing.T) {
	sid := xid.New()
	first := &InboundStream{ID: sid}
	second := &InboundStream{ID: sid}

	s := State{}.AddInbound(first).AddInbound(second)
	require.Len(t, s.Inbound, 1)
	assert.Same(t, second, s.Inbound[0])
}

func TestState_JSON(t *testing.T) {
	sid, peer := xid.New(), xid.New()
	stream := &InboundStream{ID: sid, PeerID: peer}
	stream.add(&fakeTrack{id: "v", kind: webrtc.RTPCodecTypeVideo})

	b, err := json.Marshal(State{Connected: true, ID: "R1", Users: []User{}}.AddInbound(stream))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"connected": true,
		"id": "R1",
		"users": [],
		"presenting": false,
		"clientStreams": [{"id": "`+sid.String()+`", "peer_id": "`+peer.String()+`", "tracks": [{"id": "v", "kind": "video"}]}]
	}`, string(b))
}
