package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDecodeChange(t *testing.T) {
	c, err := decodeChange(`{"type":"deleted","id":"g1","kind":"BaseGame","at":"2024-05-01T10:00:00Z"}`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != TypeDeleted || c.ID != "g1" || c.Kind != "BaseGame" || c.At.IsZero() {
		t.Fatalf("unexpected change %+v", c)
	}
	for _, bad := range []string{"", "  ", "{", `{"type":"created"}`, `{"id":"x"}`} {
		if _, err := decodeChange(bad); err == nil {
			t.Errorf("decodeChange(%q) succeeded", bad)
		}
	}
}

func TestNewSubscriberRequiresBroker(t *testing.T) {
	for _, c := range []Config{{}, {Driver: "noop"}, {Driver: "kafka"}, {Driver: "redis", RedisURL: "::bad::"}} {
		if s, err := NewSubscriber(c, SubscriberConfig{}); err == nil {
			_ = s.Close()
			t.Errorf("NewSubscriber(%+v) succeeded", c)
		}
	}
	s, err := NewSubscriber(Config{Driver: "kafka", KafkaBrokers: []string{"localhost:9092"}}, SubscriberConfig{})
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("TABLETOP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TABLETOP_TEST_REDIS_URL not set")
	}
	stream := "tabletop-test:" + uuid.NewString()
	pub := NewRedis(url, stream, 100, true)
	defer pub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, Change{Type: TypeCreated, ID: "g1", At: time.Now()}); err != nil {
		t.Fatal(err)
	}

	sub, err := NewRedisSubscriber(url, stream, SubscriberConfig{Group: "test", Consumer: "c1", From: "0"})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()
	got := make(chan Change, 1)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = sub.Run(runCtx, func(_ context.Context, c Change) error {
			select {
			case got <- c:
			default:
			}
			stop()
			return nil
		})
	}()
	select {
	case c := <-got:
		if c.ID != "g1" || c.Type != TypeCreated {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-ctx.Done():
		t.Fatal("no change received")
	}
}
