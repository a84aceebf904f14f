package amqp

import (
	"testing"
	"time"
)

func TestTransactionSyncMessageRoundTrip(t *testing.T) {
	msg := NewTransactionSyncMessage(42, 3)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 || got.Version != 3 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drifted: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestTransactionDeleteMessageDecodeFailure(t *testing.T) {
	if _, err := TransactionDeleteMessageFromJSON([]byte(`{"id":`)); err == nil {
		t.Fatalf("expected decode error for truncated JSON")
	}
}
