// Package record 消费观看会话收到的入站轨道
package record

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/AsterZephyr/screego-client/ws"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

type writer interface {
	WriteRTP(packet *rtp.Packet) error
	io.Closer
}

// Recorder 将 VP8 轨道写入 IVF 文件，Opus 轨道写入 Ogg 文件，均位于 Dir
// 其他编解码器的轨道只读取丢弃
type Recorder struct {
	Dir string

	wg sync.WaitGroup
}

// Consume implements ws.TrackSink.
func (r *Recorder) Consume(sid, peer xid.ID, track ws.RemoteTrack) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		logger := log.With().Str("sid", sid.String()).Str("peer", peer.String()).Str("track", track.ID()).Logger()

		w, path, err := r.open(sid, track)
		if err != nil {
			logger.Warn().Err(err).Msg("could not open recording, draining")
			drain(track)
			return
		}
		if w == nil {
			logger.Debug().Str("codec", track.Codec().MimeType).Msg("codec not recordable, draining")
			drain(track)
			return
		}

		logger.Info().Str("file", path).Msg("recording")
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn().Err(err).Msg("close recording")
			}
		}()
		for {
			packet, _, err := track.ReadRTP()
			if err != nil {
				return
			}
			if err := w.WriteRTP(packet); err != nil {
				logger.Debug().Err(err).Msg("write rtp")
			}
		}
	}()
}

// Wait 阻塞到全部轨道结束
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) open(sid xid.ID, track ws.RemoteTrack) (writer, string, error) {
	base := filepath.Join(r.Dir, fmt.Sprintf("%s-%s", sid, unsafeName.ReplaceAllString(track.ID(), "_")))
	switch {
	case strings.EqualFold(track.Codec().MimeType, webrtc.MimeTypeVP8):
		path := base + ".ivf"
		w, err := ivfwriter.New(path)
		return w, path, err
	case strings.EqualFold(track.Codec().MimeType, webrtc.MimeTypeOpus):
		path := base + ".ogg"
		w, err := oggwriter.New(path, 48000, 2)
		return w, path, err
	}
	return nil, "", nil
}

// Drain 丢弃全部入站轨道
type Drain struct{}

// Consume implements ws.TrackSink.
func (Drain) Consume(_, _ xid.ID, track ws.RemoteTrack) {
	go drain(track)
}

func drain(track ws.RemoteTrack) {
	for {
		if _, _, err := track.ReadRTP(); err != nil {
			return
		}
	}
}
