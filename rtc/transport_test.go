package rtc

import (
	"strings"
	"testing"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransport(t *testing.T) ws.Transport {
	factory, err := NewFactory()
	require.NoError(t, err)
	transport, err := factory(webrtc.Configuration{}, ws.TransportEvents{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func mediaLine(sdp, kind string) string {
	for _, line := range strings.Split(sdp, "\r\n") {
		if strings.HasPrefix(line, "m="+kind+" ") {
			return line
		}
	}
	return ""
}

func TestTransport_OfferIsSendOnly(t *testing.T) {
	transport := newTransport(t)
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "screego")
	require.NoError(t, err)

	require.NoError(t, transport.AddSendOnly(track, nil))
	offer, err := transport.CreateOffer()
	require.NoError(t, err)

	assert.Equal(t, webrtc.SDPTypeOffer, offer.Type)
	assert.Contains(t, offer.SDP, "a=sendonly")
	assert.NotContains(t, offer.SDP, "a=recvonly")
	assert.NotEmpty(t, mediaLine(offer.SDP, "video"))
}

func TestTransport_CodecPreference(t *testing.T) {
	transport := newTransport(t)
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP9}, "video", "screego")
	require.NoError(t, err)

	codecs := ws.SortCodecs(transport.VideoCodecs(), webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP9, SDPFmtpLine: "profile-id=2"})
	require.NoError(t, transport.AddSendOnly(track, codecs))
	offer, err := transport.CreateOffer()
	require.NoError(t, err)

	fields := strings.Fields(mediaLine(offer.SDP, "video"))
	require.Greater(t, len(fields), 3)
	assert.Equal(t, "100", fields[3])
}

func TestTransport_AnswerReceives(t *testing.T) {
	presenter := newTransport(t)
	viewer := newTransport(t)
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "screego")
	require.NoError(t, err)
	require.NoError(t, presenter.AddSendOnly(track, nil))

	offer, err := presenter.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, viewer.SetRemoteDescription(offer))
	answer, err := viewer.CreateAnswer()
	require.NoError(t, err)
	assert.Equal(t, webrtc.SDPTypeAnswer, answer.Type)
	assert.Contains(t, answer.SDP, "a=recvonly")
	require.NoError(t, presenter.SetRemoteDescription(answer))
}

func TestVideoCodecsIsCopy(t *testing.T) {
	codecs := VideoCodecs()
	codecs[0].MimeType = "video/changed"
	assert.Equal(t, webrtc.MimeTypeVP8, VideoCodecs()[0].MimeType)
}
