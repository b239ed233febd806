package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	calls []string
	acked []string
}

func (f *fakeStream) ReadGroup(_ context.Context, _, _, _ string, _ time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (f *fakeStream) Ack(_ context.Context, _, _ string, ids ...string) error {
	f.calls = append(f.calls, "ack")
	f.acked = append(f.acked, ids...)
	return nil
}

type fakeParser struct {
	calls  *[]string
	parsed []uuid.UUID
	fail   error
	panics bool
}

func (f *fakeParser) Parse(_ context.Context, fileID uuid.UUID, _, _ string) error {
	if f.panics {
		panic("parser crashed")
	}
	*f.calls = append(*f.calls, "parse")
	f.parsed = append(f.parsed, fileID)
	return f.fail
}

func newConsumerEnv() (*Consumer, *fakeStream, *fakeParser) {
	stream := &fakeStream{}
	parser := &fakeParser{calls: &stream.calls}
	return NewConsumer(stream, parser, "tasks", "workers", "test-1"), stream, parser
}

func taskMessage(id string, fileID uuid.UUID) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]interface{}{
		"file_id":      fileID.String(),
		"user_id":      "u1",
		"parse_method": "auto",
	}}
}

func TestHandleAcksAfterParse(t *testing.T) {
	consumer, stream, parser := newConsumerEnv()
	fileID := uuid.New()

	consumer.Handle(context.Background(), taskMessage("1-0", fileID))

	require.Equal(t, []string{"parse", "ack"}, stream.calls)
	assert.Equal(t, []uuid.UUID{fileID}, parser.parsed)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestHandleAcksWhenParseFails(t *testing.T) {
	consumer, stream, parser := newConsumerEnv()
	parser.fail = fmt.Errorf("engine unreachable")

	consumer.Handle(context.Background(), taskMessage("1-0", uuid.New()))

	// A failed parse already moved the file to parse_failed, so the task is
	// still acknowledged.
	assert.Equal(t, []string{"1-0"}, stream.acked)
}

func TestHandleDoesNotAckWhenParsePanics(t *testing.T) {
	consumer, stream, parser := newConsumerEnv()
	parser.panics = true

	require.Panics(t, func() {
		consumer.Handle(context.Background(), taskMessage("1-0", uuid.New()))
	})
	assert.Empty(t, stream.acked)
}

func TestHandleDropsInvalidFileID(t *testing.T) {
	consumer, stream, parser := newConsumerEnv()
	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"file_id": "not-a-uuid",
		"user_id": "u1",
	}}

	consumer.Handle(context.Background(), msg)

	assert.Empty(t, parser.parsed)
	assert.Equal(t, []string{"1-0"}, stream.acked)
}
