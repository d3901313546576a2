// Package capture 管理本地出站媒体：一组本地轨道，
// 其中主视频轨道被外部结束时可以观察到
package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
)

var (
	// ErrUnsupported 表示运行环境不支持捕获
	ErrUnsupported = errors.New("screen capture is not supported")
	// ErrActive 表示已有捕获正在进行
	ErrActive = errors.New("a capture is already active")
)

// Quality 是请求的捕获质量
type Quality struct {
	FrameRate int
	Width     int
	Height    int
}

// Source 获取捕获
type Source interface {
	Start(ctx context.Context, q Quality) (*Capture, error)
}

// Capture 是一次获取到的出站媒体流
type Capture struct {
	video  webrtc.TrackLocal
	tracks []webrtc.TrackLocal

	ended    chan struct{}
	stopped  chan struct{}
	endOnce  sync.Once
	stopOnce sync.Once
	release  func()
}

// New 以主视频轨道和其他轨道创建捕获
// release 在 Stop 时调用一次
func New(video webrtc.TrackLocal, others []webrtc.TrackLocal, release func()) *Capture {
	tracks := append([]webrtc.TrackLocal{video}, others...)
	return &Capture{
		video:   video,
		tracks:  tracks,
		ended:   make(chan struct{}),
		stopped: make(chan struct{}),
		release: release,
	}
}

// Video 返回主视频轨道
func (c *Capture) Video() webrtc.TrackLocal { return c.video }

// Tracks 返回全部轨道，视频在前
func (c *Capture) Tracks() []webrtc.TrackLocal {
	return append([]webrtc.TrackLocal(nil), c.tracks...)
}

// Ended 在主视频轨道被外部结束后关闭
func (c *Capture) Ended() <-chan struct{} { return c.ended }

// Stopped 在调用 Stop 后关闭
func (c *Capture) Stopped() <-chan struct{} { return c.stopped }

// End 标记主视频轨道已结束，只有第一次调用生效
func (c *Capture) End() {
	c.endOnce.Do(func() { close(c.ended) })
}

// Stop 释放全部轨道，可以重复调用
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopped)
		if c.release != nil {
			c.release()
		}
	})
}
