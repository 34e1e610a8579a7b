package kafka

import (
	"testing"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/config"
)

func TestProducer_TopicName(t *testing.T) {
	cases := []struct {
		name      string
		prefix    string
		eventType string
		want      string
	}{
		{name: "prefix applied", prefix: "blog", eventType: "auth.token.revoked", want: "blog.auth.token.revoked"},
		{name: "no prefix", prefix: "", eventType: "auth.token.revoked", want: "auth.token.revoked"},
		{name: "already prefixed", prefix: "blog", eventType: "blog.auth.token.revoked", want: "blog.auth.token.revoked"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Producer{cfg: config.KafkaSettings{TopicPrefix: tc.prefix}}
			if got := p.TopicName(tc.eventType); got != tc.want {
				t.Fatalf("TopicName(%q) = %q, want %q", tc.eventType, got, tc.want)
			}
		})
	}
}
