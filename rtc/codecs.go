package rtc

import (
	"github.com/pion/webrtc/v4"
)

var videoFeedback = []webrtc.RTCPFeedback{
	{Type: webrtc.TypeRTCPFBGoogREMB},
	{Type: webrtc.TypeRTCPFBCCM, Parameter: "fir"},
	{Type: webrtc.TypeRTCPFBNACK},
	{Type: webrtc.TypeRTCPFBNACK, Parameter: "pli"},
}

func video(mime, fmtp string, pt webrtc.PayloadType) webrtc.RTPCodecParameters {
	return webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     mime,
			ClockRate:    90000,
			SDPFmtpLine:  fmtp,
			RTCPFeedback: videoFeedback,
		},
		PayloadType: pt,
	}
}

// videoCodecs 是注册到每个传输的视频编解码器，顺序即默认偏好
var videoCodecs = []webrtc.RTPCodecParameters{
	video(webrtc.MimeTypeVP8, "", 96),
	video(webrtc.MimeTypeVP9, "profile-id=0", 98),
	video(webrtc.MimeTypeVP9, "profile-id=2", 100),
	video(webrtc.MimeTypeH264, "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42001f", 102),
	video(webrtc.MimeTypeH264, "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f", 106),
	video(webrtc.MimeTypeH264, "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=4d001f", 112),
	video(webrtc.MimeTypeAV1, "", 45),
}

var audioCodecs = []webrtc.RTPCodecParameters{
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeOpus,
			ClockRate:   48000,
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		},
		PayloadType: 111,
	},
}

// VideoCodecs 返回支持的视频编解码器
func VideoCodecs() []webrtc.RTPCodecParameters {
	return append([]webrtc.RTPCodecParameters(nil), videoCodecs...)
}

func registerCodecs(m *webrtc.MediaEngine) error {
	for _, codec := range videoCodecs {
		if err := m.RegisterCodec(codec, webrtc.RTPCodecTypeVideo); err != nil {
			return err
		}
	}
	for _, codec := range audioCodecs {
		if err := m.RegisterCodec(codec, webrtc.RTPCodecTypeAudio); err != nil {
			return err
		}
	}
	return nil
}
