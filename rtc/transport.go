// Package rtc 将 pion PeerConnection 适配为房间会话使用的传输
package rtc

import (
	"errors"
	"fmt"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Transport 是基于 pion PeerConnection 的 ws.Transport
type Transport struct {
	pc *webrtc.PeerConnection
}

// NewAPI 使用客户端的编解码器表和默认拦截器创建 pion API
func NewAPI() (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := registerCodecs(m); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}
	i := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(i)), nil
}

// NewFactory 返回为每个会话创建一个 PeerConnection 的工厂
func NewFactory() (ws.TransportFactory, error) {
	api, err := NewAPI()
	if err != nil {
		return nil, err
	}
	return func(conf webrtc.Configuration, events ws.TransportEvents) (ws.Transport, error) {
		return New(api, conf, events)
	}, nil
}

// New 创建传输并将回调连接到 events
func New(api *webrtc.API, conf webrtc.Configuration, events ws.TransportEvents) (*Transport, error) {
	pc, err := api.NewPeerConnection(conf)
	if err != nil {
		return nil, err
	}

	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil && events.OnICECandidate != nil {
			events.OnICECandidate(candidate.ToJSON())
		}
	})
	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Debug().Str("ice_state", s.String()).Msg("ICE state")
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if events.OnConnectionState != nil {
			events.OnConnectionState(s)
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Debug().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Str("codec", track.Codec().MimeType).
			Msg("OnTrack received")
		if events.OnTrack != nil {
			events.OnTrack(track)
		}
	})
	return &Transport{pc: pc}, nil
}

// AddSendOnly implements ws.Transport.
func (t *Transport) AddSendOnly(track webrtc.TrackLocal, codecs []webrtc.RTPCodecParameters) error {
	transceiver, err := t.pc.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendonly,
	})
	if err != nil {
		return err
	}
	if len(codecs) > 0 {
		if err := transceiver.SetCodecPreferences(codecs); err != nil {
			return fmt.Errorf("codec preferences: %w", err)
		}
	}

	// RTCP 必须被读取，拦截器才能处理 NACK 和 PLI
	sender := transceiver.Sender()
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

// VideoCodecs implements ws.Transport.
func (t *Transport) VideoCodecs() []webrtc.RTPCodecParameters {
	return VideoCodecs()
}

// CreateOffer implements ws.Transport.
func (t *Transport) CreateOffer() (webrtc.SessionDescription, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return offer, nil
}

// CreateAnswer implements ws.Transport.
func (t *Transport) CreateAnswer() (webrtc.SessionDescription, error) {
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

// SetRemoteDescription implements ws.Transport.
func (t *Transport) SetRemoteDescription(desc webrtc.SessionDescription) error {
	return t.pc.SetRemoteDescription(desc)
}

// AddICECandidate implements ws.Transport.
func (t *Transport) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return t.pc.AddICECandidate(candidate)
}

// Close implements ws.Transport.
func (t *Transport) Close() error {
	if err := t.pc.Close(); err != nil && !errors.Is(err, webrtc.ErrConnectionClosed) {
		return err
	}
	return nil
}
