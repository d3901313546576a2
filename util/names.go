package util

import (
	"fmt"

	"github.com/pion/randutil"
)

var (
	adjectives = []string{
		"amber", "brave", "calm", "daring", "eager", "fancy", "gentle", "happy",
		"icy", "jolly", "kind", "lively", "mellow", "noble", "odd", "proud",
		"quiet", "rapid", "shy", "tidy", "upbeat", "vivid", "witty", "young",
	}
	nouns = []string{
		"badger", "comet", "dolphin", "falcon", "glacier", "harbor", "island",
		"jaguar", "koala", "lantern", "meadow", "nebula", "otter", "panda",
		"quartz", "raven", "summit", "tiger", "unicorn", "violet", "walrus",
	}
)

// NewRoomName 生成一个随机的房间名，格式为 形容词-形容词-名词
func NewRoomName(r randutil.MathRandomGenerator) string {
	return fmt.Sprintf("%s-%s-%s", pick(r, adjectives), pick(r, adjectives), pick(r, nouns))
}

func pick(r randutil.MathRandomGenerator, words []string) string {
	return words[r.Intn(len(words))]
}
