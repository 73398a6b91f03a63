package worker

// replay_cron.go
// Periodically moves dead-lettered jobs back onto their queue once the mail
// breaker is no longer open. Each entry is replayed at most maxReplays times.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = time.Minute
	replayBatchSize    = 10
	maxReplays         = 3
)

type ReplayCronConfig struct {
	RDB   *redis.Client
	CB    *infra.CircuitBreaker
	Queue string
}

// StartReplayCron ticks until ctx is done.
func StartReplayCron(ctx context.Context, cfg ReplayCronConfig) {
	go func() {
		ticker := time.NewTicker(replayTickInterval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("replay_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("replay_cron: shutting down")
				return
			case <-ticker.C:
				replayDLQ(ctx, cfg)
			}
		}
	}()
}

func replayDLQ(ctx context.Context, cfg ReplayCronConfig) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("replay_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + cfg.Queue
	for i := 0; i < replayBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("replay_cron: pop failed")
			return
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("replay_cron: dropping malformed entry")
			continue
		}
		if entry.Job.Replays >= maxReplays {
			// Parked entries stay for manual inspection.
			_ = cfg.RDB.LPush(ctx, dlqKey+":parked", raw).Err()
			continue
		}

		job := entry.Job
		job.Replays++
		job.Attempts = 0
		if err := push(ctx, cfg.RDB, entry.OriginalQueue, job); err != nil {
			log.Error().Err(err).Msg("replay_cron: requeue failed")
			sendEntry(ctx, cfg.RDB, entry)
			return
		}
		log.Info().Str("job_type", job.Type).Int("replay", job.Replays).Msg("replay_cron: job requeued")
	}
}
