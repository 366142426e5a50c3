package queue_test

import (
	"testing"

	"github.com/yeisme/filevault/pkg/queue"
)

// TestWatermillMessageRoundTrip 测试事件信封经 watermill 消息往返后完整.
func TestWatermillMessageRoundTrip(t *testing.T) {
	payload := queue.FileStoredPayload{
		File: queue.FileRef{
			FileID: "01AN4Z07BY79KA1307SR9X4MV3",
			Owner:  "alice@example.com",
			Name:   "report.pdf",
			Size:   42,
		},
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFileStored, payload,
		queue.WithTraceID("trace-xyz"), queue.WithProducer("filevault"))
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	if msg.Metadata.Get("topic") != queue.TopicFileStored {
		t.Errorf("expected topic metadata %s, got %s", queue.TopicFileStored, msg.Metadata.Get("topic"))
	}

	if msg.Metadata.Get("producer") != "filevault" {
		t.Errorf("expected producer metadata, got %s", msg.Metadata.Get("producer"))
	}

	env, err := queue.ParseWatermillMessage[queue.FileStoredPayload](msg)
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}

	if env.Header.Topic != queue.TopicFileStored || env.Header.TraceID != "trace-xyz" {
		t.Errorf("unexpected header: %+v", env.Header)
	}

	if env.Payload.File != payload.File {
		t.Errorf("payload mismatch: %+v", env.Payload)
	}
}
