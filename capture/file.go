package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

const (
	oggPageDuration  = 20 * time.Millisecond
	defaultFrameRate = 30
)

// FileSource 将预先编码的 IVF 视频文件（以及可选的 Ogg/Opus 音频文件）作为捕获播放
// 视频文件读完时视频轨道结束
type FileSource struct {
	Video string
	Audio string
}

// Start implements Source.
func (s FileSource) Start(ctx context.Context, q Quality) (*Capture, error) {
	if s.Video == "" {
		return nil, ErrUnsupported
	}

	videoFile, err := os.Open(s.Video)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	ivf, header, err := ivfreader.NewWith(videoFile)
	if err != nil {
		_ = videoFile.Close()
		return nil, fmt.Errorf("read ivf header: %w", err)
	}

	var mimeType string
	switch header.FourCC {
	case "VP80":
		mimeType = webrtc.MimeTypeVP8
	case "VP90":
		mimeType = webrtc.MimeTypeVP9
	case "AV01":
		mimeType = webrtc.MimeTypeAV1
	default:
		_ = videoFile.Close()
		return nil, fmt.Errorf("unsupported ivf codec %q", header.FourCC)
	}

	if q.Width > 0 && q.Height > 0 && (int(header.Width) > q.Width || int(header.Height) > q.Height) {
		log.Warn().Str("file", s.Video).
			Uint16("width", header.Width).Uint16("height", header.Height).
			Int("maxWidth", q.Width).Int("maxHeight", q.Height).
			Msg("capture file exceeds the requested resolution, encoded frames are sent unscaled")
	}

	streamID := "screego-" + xid.New().String()
	videoTrack, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mimeType}, "video", streamID)
	if err != nil {
		_ = videoFile.Close()
		return nil, err
	}

	var (
		others     []webrtc.TrackLocal
		audioFile  *os.File
		audioTrack *webrtc.TrackLocalStaticSample
		ogg        *oggreader.OggReader
	)
	if s.Audio != "" {
		audioFile, err = os.Open(s.Audio)
		if err != nil {
			_ = videoFile.Close()
			return nil, fmt.Errorf("open audio: %w", err)
		}
		ogg, _, err = oggreader.NewWith(audioFile)
		if err != nil {
			_ = videoFile.Close()
			_ = audioFile.Close()
			return nil, fmt.Errorf("read ogg header: %w", err)
		}
		audioTrack, err = webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", streamID)
		if err != nil {
			_ = videoFile.Close()
			_ = audioFile.Close()
			return nil, err
		}
		others = append(others, audioTrack)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := New(videoTrack, others, func() {
		cancel()
		_ = videoFile.Close()
		if audioFile != nil {
			_ = audioFile.Close()
		}
	})

	if audioTrack != nil {
		go pumpAudio(ctx, ogg, audioTrack)
	}

	go func() {
		if err := pumpVideo(ctx, ivf, header, videoTrack, q.FrameRate); err != nil {
			log.Debug().Err(err).Str("file", s.Video).Msg("video capture ended")
		}
		if ctx.Err() == nil {
			c.End()
		}
	}()
	return c, nil
}

// frameDuration 按文件时间基计算一帧的时长
// delta 是与上一帧的时间戳差，为 0 时按一个时间基单位计算，文件没有时间基时按 30 帧每秒
// maxRate 大于 0 时是帧率上限，文件帧率更高时放慢播放
func frameDuration(header *ivfreader.IVFFileHeader, delta uint64, maxRate int) time.Duration {
	d := time.Second / defaultFrameRate
	if header.TimebaseNumerator > 0 && header.TimebaseDenominator > 0 {
		ticks := delta
		if ticks == 0 {
			ticks = 1
		}
		d = time.Duration(float64(time.Second) * float64(ticks) * float64(header.TimebaseNumerator) / float64(header.TimebaseDenominator))
	}
	if maxRate > 0 {
		if least := time.Second / time.Duration(maxRate); d < least {
			d = least
		}
	}
	return d
}

func pumpVideo(ctx context.Context, ivf *ivfreader.IVFReader, header *ivfreader.IVFFileHeader, track *webrtc.TrackLocalStaticSample, maxRate int) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		data, frameHeader, err := ivf.ParseNextFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var delta uint64
		if frameHeader.Timestamp > last {
			delta = frameHeader.Timestamp - last
		}
		last = frameHeader.Timestamp

		frame := frameDuration(header, delta, maxRate)
		if err := track.WriteSample(media.Sample{Data: data, Duration: frame}); err != nil {
			return err
		}
		timer.Reset(frame)
	}
}

func pumpAudio(ctx context.Context, ogg *oggreader.OggReader, track *webrtc.TrackLocalStaticSample) {
	ticker := time.NewTicker(oggPageDuration)
	defer ticker.Stop()
	var lastGranule uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		page, header, err := ogg.ParseNextPage()
		if err != nil {
			return
		}
		samples := float64(header.GranulePosition - lastGranule)
		lastGranule = header.GranulePosition
		duration := time.Duration((samples/48000)*1000) * time.Millisecond
		if err := track.WriteSample(media.Sample{Data: page, Duration: duration}); err != nil {
			return
		}
	}
}
