// Package queue moves filter jobs and results through Redis Streams.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"go-photobooth/pkg/common"
)

const (
	workerGroup      = "workers"
	coordinatorGroup = "coordinators"
)

// RedisClient wraps a Redis connection with the job and result streams.
type RedisClient struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr string) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: "photobooth",
	}, nil
}

// Close closes the underlying connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) jobsStream() string {
	return r.prefix + ":jobs"
}

func (r *RedisClient) resultsStream() string {
	return r.prefix + ":results"
}

// EnsureGroups creates the consumer groups, and the streams with them. A
// group that already exists is not an error.
func (r *RedisClient) EnsureGroups(ctx context.Context) error {
	for stream, group := range map[string]string{
		r.jobsStream():    workerGroup,
		r.resultsStream(): coordinatorGroup,
	} {
		err := r.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
		if err != nil && !isBusyGroup(err) {
			return fmt.Errorf("create group %s on %s: %w", group, stream, err)
		}
	}
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// AddJob appends job to the jobs stream and returns its message ID.
func (r *RedisClient) AddJob(ctx context.Context, job *common.JobMessage) (string, error) {
	return r.add(ctx, r.jobsStream(), job)
}

// AddResult appends res to the results stream and returns its message ID.
func (r *RedisClient) AddResult(ctx context.Context, res *common.ResultMessage) (string, error) {
	return r.add(ctx, r.resultsStream(), res)
}

func (r *RedisClient) add(ctx context.Context, stream string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": b},
	}).Result()
}

// ReadJob blocks up to block for the next job delivered to consumer. It
// returns an empty ID and nil job when nothing arrived in time. A message that
// cannot be decoded is returned as its ID with an error, so it can be acked.
func (r *RedisClient) ReadJob(ctx context.Context, consumer string, block time.Duration) (string, *common.JobMessage, error) {
	var job common.JobMessage
	id, err := r.read(ctx, r.jobsStream(), workerGroup, consumer, block, &job)
	if err != nil || id == "" {
		return id, nil, err
	}
	return id, &job, nil
}

// ReadResult blocks up to block for the next result delivered to consumer.
func (r *RedisClient) ReadResult(ctx context.Context, consumer string, block time.Duration) (string, *common.ResultMessage, error) {
	var res common.ResultMessage
	id, err := r.read(ctx, r.resultsStream(), coordinatorGroup, consumer, block, &res)
	if err != nil || id == "" {
		return id, nil, err
	}
	return id, &res, nil
}

func (r *RedisClient) read(ctx context.Context, stream, group, consumer string, block time.Duration, v any) (string, error) {
	result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(result) == 0 || len(result[0].Messages) == 0 {
		return "", nil
	}

	msg := result[0].Messages[0]
	if err := json.Unmarshal(bytesFromInterface(msg.Values["data"]), v); err != nil {
		return msg.ID, fmt.Errorf("decode message %s: %w", msg.ID, err)
	}
	return msg.ID, nil
}

// AckJob acknowledges a processed job.
func (r *RedisClient) AckJob(ctx context.Context, id string) error {
	return r.client.XAck(ctx, r.jobsStream(), workerGroup, id).Err()
}

// AckResult acknowledges a consumed result.
func (r *RedisClient) AckResult(ctx context.Context, id string) error {
	return r.client.XAck(ctx, r.resultsStream(), coordinatorGroup, id).Err()
}

// ClaimStaleJobs moves up to count jobs that have been pending longer than
// minIdle to consumer, so a crashed worker's jobs get retried. It returns the
// claimed messages decoded.
func (r *RedisClient) ClaimStaleJobs(ctx context.Context, consumer string, minIdle time.Duration, count int) (map[string]*common.JobMessage, error) {
	pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.jobsStream(),
		Group:  workerGroup,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  int64(count),
	}).Result()
	if err != nil || len(pending) == 0 {
		return nil, err
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.jobsStream(),
		Group:    workerGroup,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil, err
	}

	jobs := make(map[string]*common.JobMessage, len(claimed))
	for _, c := range claimed {
		var job common.JobMessage
		if err := json.Unmarshal(bytesFromInterface(c.Values["data"]), &job); err != nil {
			continue
		}
		jobs[c.ID] = &job
	}
	return jobs, nil
}

func bytesFromInterface(v interface{}) []byte {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case []byte:
		return t
	default:
		b, _ := json.Marshal(t)
		return b
	}
}
