package ws

import (
	"strings"

	"github.com/pion/webrtc/v4"
)

// SortCodecs 按偏好对编解码器排序：
// 编解码器与格式参数都相同的排在最前，仅编解码器相同的其次，其余在后，
// 每一档内保持原有顺序
func SortCodecs(codecs []webrtc.RTPCodecParameters, prefer webrtc.RTPCodecCapability) []webrtc.RTPCodecParameters {
	var exact, mime, others []webrtc.RTPCodecParameters
	for _, codec := range codecs {
		switch {
		case !strings.EqualFold(codec.MimeType, prefer.MimeType):
			others = append(others, codec)
		case codec.SDPFmtpLine == prefer.SDPFmtpLine:
			exact = append(exact, codec)
		default:
			mime = append(mime, codec)
		}
	}
	sorted := make([]webrtc.RTPCodecParameters, 0, len(codecs))
	sorted = append(sorted, exact...)
	sorted = append(sorted, mime...)
	return append(sorted, others...)
}
