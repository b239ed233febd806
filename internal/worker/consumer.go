// Package worker consumes parse tasks from the task stream and runs them
// through the parser.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const readBlock = 5 * time.Second

// Stream is the slice of the task queue the consumer needs.
type Stream interface {
	ReadGroup(ctx context.Context, stream, group, consumer string, block time.Duration) ([]redis.XMessage, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
}

// Parser runs a single file through analysis.
type Parser interface {
	Parse(ctx context.Context, fileID uuid.UUID, userID, parseMethod string) error
}

// Consumer reads parse tasks from a stream group and acknowledges each task
// only after the parse attempt finished.
type Consumer struct {
	stream Stream
	parser Parser
	name   string
	topic  string
	group  string
}

func NewConsumer(stream Stream, parser Parser, topic, group, name string) *Consumer {
	return &Consumer{
		stream: stream,
		parser: parser,
		name:   name,
		topic:  topic,
		group:  group,
	}
}

// Run consumes tasks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	log.Info().Str("consumer", c.name).Str("stream", c.topic).Str("group", c.group).Msg("worker consuming")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("consumer", c.name).Msg("worker shutting down")
			return
		default:
		}

		messages, err := c.stream.ReadGroup(ctx, c.topic, c.group, c.name, readBlock)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Str("consumer", c.name).Msg("worker shutting down")
				return
			}
			log.Error().Err(err).Msg("read task stream")
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			c.Handle(ctx, msg)
		}
	}
}

// Handle parses the task carried by msg and then acknowledges it. The ack
// happens regardless of the parse outcome: a failed parse already moved the
// file to parse_failed, redelivery would not help. A crash mid-parse leaves
// the message pending for redelivery.
func (c *Consumer) Handle(ctx context.Context, msg redis.XMessage) {
	c.parseTask(ctx, msg)

	ackCtx := context.WithoutCancel(ctx)
	if err := c.stream.Ack(ackCtx, c.topic, c.group, msg.ID); err != nil {
		log.Error().Err(err).Str("task", msg.ID).Msg("ack task")
	}
}

func (c *Consumer) parseTask(ctx context.Context, msg redis.XMessage) {
	fileIDStr, _ := msg.Values["file_id"].(string)
	userID, _ := msg.Values["user_id"].(string)
	parseMethod, _ := msg.Values["parse_method"].(string)

	fileID, err := uuid.Parse(fileIDStr)
	if err != nil {
		log.Warn().Str("task", msg.ID).Str("file_id", fileIDStr).Msg("invalid file_id, dropping task")
		return
	}

	log.Info().Str("task", msg.ID).Stringer("file_id", fileID).Msg("parsing file")
	start := time.Now()
	if err := c.parser.Parse(ctx, fileID, userID, parseMethod); err != nil {
		log.Error().Err(err).Stringer("file_id", fileID).Dur("elapsed", time.Since(start)).Msg("parse failed")
		return
	}
	log.Info().Stringer("file_id", fileID).Dur("elapsed", time.Since(start)).Msg("parse complete")
}
