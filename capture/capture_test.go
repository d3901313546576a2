package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_StopIsIdempotent(t *testing.T) {
	released := 0
	video, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "s")
	require.NoError(t, err)
	audio, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "s")
	require.NoError(t, err)

	c := New(video, []webrtc.TrackLocal{audio}, func() { released++ })
	assert.Equal(t, video, c.Video())
	assert.Len(t, c.Tracks(), 2)

	c.Stop()
	c.Stop()
	assert.Equal(t, 1, released)
	select {
	case <-c.Stopped():
	default:
		t.Fatal("stopped channel not closed")
	}
	select {
	case <-c.Ended():
		t.Fatal("stop must not signal an external end")
	default:
	}
}

func TestCapture_EndOnce(t *testing.T) {
	c := New(nil, nil, nil)
	c.End()
	c.End()
	<-c.Ended()
}

func TestFileSource_Unsupported(t *testing.T) {
	_, err := FileSource{}.Start(context.Background(), Quality{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := FileSource{Video: filepath.Join(t.TempDir(), "missing.ivf")}.Start(context.Background(), Quality{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupported)
}

func TestFileSource_EndsWhenExhausted(t *testing.T) {
	path := writeIVF(t, "VP80", 3)

	c, err := FileSource{Video: path}.Start(context.Background(), Quality{FrameRate: 100})
	require.NoError(t, err)
	defer c.Stop()

	assert.Equal(t, webrtc.RTPCodecTypeVideo, c.Video().Kind())
	select {
	case <-c.Ended():
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not end after the file was exhausted")
	}
}

func TestFileSource_StopDoesNotEnd(t *testing.T) {
	path := writeIVF(t, "VP80", 1000)

	c, err := FileSource{Video: path}.Start(context.Background(), Quality{FrameRate: 10})
	require.NoError(t, err)
	c.Stop()

	select {
	case <-c.Ended():
		t.Fatal("stopped capture must not report an external end")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileSource_UnknownCodec(t *testing.T) {
	path := writeIVF(t, "H264", 1)
	_, err := FileSource{Video: path}.Start(context.Background(), Quality{})
	assert.Error(t, err)
}

func writeIVF(t *testing.T, fourcc string, frames int) string {
	t.Helper()
	header := make([]byte, 32)
	copy(header[0:], "DKIF")
	binary.LittleEndian.PutUint16(header[4:], 0)
	binary.LittleEndian.PutUint16(header[6:], 32)
	copy(header[8:], fourcc)
	binary.LittleEndian.PutUint16(header[12:], 640)
	binary.LittleEndian.PutUint16(header[14:], 480)
	binary.LittleEndian.PutUint32(header[16:], 30)
	binary.LittleEndian.PutUint32(header[20:], 1)
	binary.LittleEndian.PutUint32(header[24:], uint32(frames))

	data := header
	payload := []byte{0x10, 0x02, 0x00, 0x9d, 0x01, 0x2a}
	for i := 0; i < frames; i++ {
		frame := make([]byte, 12)
		binary.LittleEndian.PutUint32(frame[0:], uint32(len(payload)))
		binary.LittleEndian.PutUint64(frame[4:], uint64(i))
		data = append(data, frame...)
		data = append(data, payload...)
	}

	path := filepath.Join(t.TempDir(), "capture.ivf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFrameDuration(t *testing.T) {
	perFrame := &ivfreader.IVFFileHeader{TimebaseNumerator: 1, TimebaseDenominator: 30}
	millis := &ivfreader.IVFFileHeader{TimebaseNumerator: 1, TimebaseDenominator: 1000}

	tests := []struct {
		name    string
		header  *ivfreader.IVFFileHeader
		delta   uint64
		maxRate int
		want    time.Duration
	}{
		{name: "file timebase", header: perFrame, delta: 1, want: time.Second / 30},
		{name: "higher limit does not speed up", header: perFrame, delta: 1, maxRate: 60, want: time.Second / 30},
		{name: "lower limit slows down", header: perFrame, delta: 1, maxRate: 15, want: time.Second / 15},
		{name: "timestamp delta", header: millis, delta: 40, want: 40 * time.Millisecond},
		{name: "first frame", header: perFrame, delta: 0, want: time.Second / 30},
		{name: "no timebase", header: &ivfreader.IVFFileHeader{}, want: time.Second / 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frameDuration(tt.header, tt.delta, tt.maxRate))
		})
	}
}

func TestFileSource_WarnsAboveRequestedResolution(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	path := writeIVF(t, "VP80", 1)
	c, err := FileSource{Video: path}.Start(context.Background(), Quality{FrameRate: 30, Width: 320, Height: 240})
	require.NoError(t, err)
	defer c.Stop()
	assert.Contains(t, buf.String(), "exceeds the requested resolution")
}
