package mode

// Mode 定义了客户端的运行模式
type Mode string

const (
	// Dev 开发模式，日志以可读的控制台格式输出
	Dev Mode = "dev"
	// Prod 生产模式，日志以 JSON 格式输出
	Prod Mode = "prod"
)

var current = Dev

// Set 设置当前模式，未知值回退为开发模式
func Set(m Mode) {
	switch m {
	case Prod:
		current = Prod
	default:
		current = Dev
	}
}

// Get 返回当前模式
func Get() Mode {
	return current
}
