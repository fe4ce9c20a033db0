package events

import (
	"context"
	"testing"
)

func TestNewFallsBackToNoop(t *testing.T) {
	cases := []Config{
		{},
		{Driver: "noop"},
		{Driver: "carrier-pigeon"},
		{Driver: "kafka"},
		{Driver: "kafka", KafkaBrokers: []string{" ", ""}},
		{Driver: "redis", RedisURL: "::not a url::"},
	}
	for _, c := range cases {
		p := New(c)
		if _, ok := p.(*Noop); !ok {
			t.Errorf("New(%+v) = %T, want *Noop", c, p)
		}
		if err := p.Publish(context.Background(), Change{Type: TypeCreated, ID: "x"}); err != nil {
			t.Errorf("noop publish: %v", err)
		}
		_ = p.Close()
	}
}

func TestNewBuildsBrokerPublishers(t *testing.T) {
	k := New(Config{Driver: "kafka", KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"})
	if _, ok := k.(*kafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", k)
	}
	_ = k.Close()
	r := New(Config{Driver: "REDIS", RedisURL: "redis://localhost:6379/1", Stream: "s"})
	rp, ok := r.(*redisPublisher)
	if !ok {
		t.Fatalf("expected redis publisher, got %T", r)
	}
	if rp.stream != "s" {
		t.Fatalf("stream = %q", rp.stream)
	}
	_ = r.Close()
}
