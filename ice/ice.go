// Package ice 将协调服务器为会话下发的 STUN/TURN 地址
// 转换为点对点传输的配置
package ice

import (
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Server 是协调服务器下发的一个 ICE 服务器
type Server struct {
	URLs       []string `json:"urls"`
	Credential string   `json:"credential,omitempty"`
	Username   string   `json:"username,omitempty"`
}

// Configuration 生成单个会话的传输配置
// 没有可解析地址的条目会被丢弃，forceRelay 为 true 时
// 只使用中继候选
func Configuration(servers []Server, forceRelay bool) webrtc.Configuration {
	conf := webrtc.Configuration{ICEServers: []webrtc.ICEServer{}}
	for _, server := range servers {
		urls := ValidURLs(server.URLs)
		if len(urls) == 0 {
			continue
		}
		entry := webrtc.ICEServer{URLs: urls}
		if server.Username != "" || server.Credential != "" {
			entry.Username = server.Username
			entry.Credential = server.Credential
			entry.CredentialType = webrtc.ICECredentialTypePassword
		}
		conf.ICEServers = append(conf.ICEServers, entry)
	}
	if forceRelay {
		conf.ICETransportPolicy = webrtc.ICETransportPolicyRelay
	}
	return conf
}

// ValidURLs 返回可以解析为 stun/turn URI 的地址
func ValidURLs(urls []string) []string {
	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		if _, err := stun.ParseURI(raw); err != nil {
			log.Warn().Str("url", raw).Err(err).Msg("ignoring invalid ICE server url")
			continue
		}
		valid = append(valid, raw)
	}
	return valid
}

// HasRelay 判断 conf 中是否至少有一个 TURN 地址
func HasRelay(conf webrtc.Configuration) bool {
	for _, server := range conf.ICEServers {
		for _, raw := range server.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				continue
			}
			if uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS {
				return true
			}
		}
	}
	return false
}
