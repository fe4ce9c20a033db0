package events

import (
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Config selects and configures a publisher. Driver: redis|kafka|file|noop (default).
type Config struct {
	Driver       string   `json:",default=noop,options=noop|redis|kafka|file"`
	RedisURL     string   `json:",optional"`
	Stream       string   `json:",default=catalog:changes"`
	MaxLen       int64    `json:",default=100000"`
	MaxLenApprox bool     `json:",default=true"`
	KafkaBrokers []string `json:",optional"`
	KafkaTopic   string   `json:",default=catalog.changes"`
	File         string   `json:",default=logs/catalog-changes.log"`
}

// New builds a Publisher from c; misconfigured brokers fall back to noop.
func New(c Config) Publisher {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "redis":
		url := c.RedisURL
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		logx.Infof("[catalog-events] redis stream publisher enabled: stream=%s", c.Stream)
		return NewRedis(url, c.Stream, c.MaxLen, c.MaxLenApprox)
	case "kafka":
		brokers := make([]string, 0, len(c.KafkaBrokers))
		for _, b := range c.KafkaBrokers {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		if len(brokers) == 0 {
			logx.Infof("[catalog-events] kafka requested without brokers; using noop")
			return NewNoop()
		}
		logx.Infof("[catalog-events] kafka publisher enabled: brokers=%s topic=%s", strings.Join(brokers, ","), c.KafkaTopic)
		return NewKafka(brokers, c.KafkaTopic)
	case "file":
		p, err := NewFile(c.File)
		if err != nil {
			logx.Errorf("[catalog-events] open %s: %v; using noop", c.File, err)
			return NewNoop()
		}
		logx.Infof("[catalog-events] file publisher enabled: file=%s", c.File)
		return p
	case "", "noop":
		return NewNoop()
	default:
		logx.Infof("[catalog-events] unsupported driver %q; using noop", c.Driver)
		return NewNoop()
	}
}
