// Package redis publishes signals and decisions to a redis stream plus a
// pubsub channel so dashboards and alerting can consume them live.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"qhedge/internal/application/port"
)

type Journal struct {
	rdb            *redis.Client
	signalStream   string
	decisionStream string
	decisionChan   string
}

func New(rdb *redis.Client, prefix string) *Journal {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "qhedge"
	}
	return &Journal{
		rdb:            rdb,
		signalStream:   prefix + ":signals",
		decisionStream: prefix + ":decisions",
		decisionChan:   prefix + ":decisions:pub",
	}
}

func (j *Journal) Close() error { return j.rdb.Close() }

func (j *Journal) RecordSignal(ctx context.Context, ts int64, name string, value float64, payload string) error {
	_, err := j.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: j.signalStream,
		Values: map[string]any{
			"ts_ms":   ts,
			"name":    name,
			"value":   value,
			"payload": payload,
		},
	}).Result()
	return err
}

func (j *Journal) RecordDecision(ctx context.Context, ts int64, strategy, symbol string, quantity float64, payload string) error {
	_, err := j.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: j.decisionStream,
		Values: map[string]any{
			"ts_ms":    ts,
			"strategy": strategy,
			"symbol":   symbol,
			"quantity": quantity,
			"payload":  payload,
		},
	}).Result()
	if err != nil {
		return err
	}

	// Plain JSON on pubsub for live consumers.
	msg := fmt.Sprintf(`{"ts_ms":%d,"strategy":"%s","symbol":"%s","quantity":%.2f,"payload":%q}`,
		ts, strategy, symbol, quantity, payload)
	return j.rdb.Publish(ctx, j.decisionChan, msg).Err()
}

var _ port.DecisionJournal = (*Journal)(nil)
