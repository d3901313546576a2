// Package notify 是客户端唯一面向用户的通知出口
// 各组件按键上报通知，由这里翻译并输出
package notify

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Level 是通知的级别
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Notice 是一条面向用户的消息，Key 选择翻译模板
// 没有对应模板时原样显示 Raw
type Notice struct {
	Level Level
	Key   string
	Args  []interface{}
	Raw   string
}

// Notifier 输出通知
type Notifier interface {
	Notify(n Notice)
}

// Func 将函数适配为 Notifier
type Func func(Notice)

// Notify 调用 f
func (f Func) Notify(n Notice) { f(n) }

// Logger 以配置的语言通过 zerolog 输出通知
type Logger struct {
	printer *message.Printer
}

// NewLogger 按 BCP 47 语言创建 Logger，不支持的语言使用英语
func NewLogger(lang string) *Logger {
	return &Logger{printer: message.NewPrinter(Match(lang))}
}

// Match 选择与 lang 最接近的已支持语言
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// Text 返回通知翻译后的文本
func (l *Logger) Text(n Notice) string {
	if n.Key == "" {
		return n.Raw
	}
	return l.printer.Sprintf(n.Key, n.Args...)
}

// Notify implements Notifier.
func (l *Logger) Notify(n Notice) {
	level := zerolog.InfoLevel
	if n.Level == Error {
		level = zerolog.ErrorLevel
	}
	log.WithLevel(level).Str("notice", string(n.Level)).Msg(l.Text(n))
}
