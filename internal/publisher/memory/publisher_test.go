package memory

import (
	"context"
	"testing"
)

func TestPublisherRecordsEvents(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "claims.decided", map[string]string{"action": "approved"})
	if err != nil || id1 != "mem-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "crawl.completed", "payload")
	if err != nil || id2 != "mem-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	events := pub.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Topic != "claims.decided" || events[1].Topic != "crawl.completed" {
		t.Fatalf("topics not recorded correctly: %+v", events)
	}

	if got := pub.ByTopic("crawl.completed"); len(got) != 1 || got[0].Payload != "payload" {
		t.Fatalf("ByTopic returned %+v", got)
	}

	events[0].Topic = "modified"
	if pub.Events()[0].Topic == "modified" {
		t.Fatal("expected Events() to return a copy")
	}
}
