package worker

// dlq.go: parked jobs.
// One Redis list per source queue, newest first, capped at MaxDeadLetters.
// Entries carry the sale or fiscal document they were about so support can
// find them without decoding payloads.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix      = "dlq:"
	MaxDeadLetters = 1000
)

// DeadLetterEntry is one parked job.
type DeadLetterEntry struct {
	Queue            string          `json:"queue"`
	JobType          string          `json:"job_type"`
	CompanyID        string          `json:"company_id,omitempty"`
	SaleID           string          `json:"sale_id,omitempty"`
	FiscalDocumentID string          `json:"fiscal_document_id,omitempty"`
	Payload          json.RawMessage `json:"payload"`
	Reason           string          `json:"reason"`
	Attempts         int             `json:"attempts"`
	FailedAt         time.Time       `json:"failed_at"`
}

// payloadRefs lifts the ids every job payload in this service uses.
type payloadRefs struct {
	CompanyID        string `json:"company_id"`
	SaleID           string `json:"sale_id"`
	FiscalDocumentID string `json:"fiscal_document_id"`
}

func newDeadLetter(queue, jobType string, payload json.RawMessage, reason string, attempts int) DeadLetterEntry {
	e := DeadLetterEntry{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	var refs payloadRefs
	if json.Unmarshal(payload, &refs) == nil {
		e.CompanyID, e.SaleID, e.FiscalDocumentID = refs.CompanyID, refs.SaleID, refs.FiscalDocumentID
	}
	return e
}

// parkJob stores e under its queue's list and trims the list. Failures are
// logged only: the job is already lost to its handler.
func parkJob(ctx context.Context, rdb *redis.Client, e DeadLetterEntry) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("queue", e.Queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + e.Queue
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, MaxDeadLetters-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("sale_id", e.SaleID).Msg("dlq: failed to park job")
		return
	}

	log.Warn().
		Str("queue", e.Queue).
		Str("job_type", e.JobType).
		Str("sale_id", e.SaleID).
		Str("fiscal_document_id", e.FiscalDocumentID).
		Str("reason", e.Reason).
		Int("attempts", e.Attempts).
		Msg("dlq: job parked")
}

// DLQLengths reports every queue's parked job count, keyed by queue name.
func DLQLengths(ctx context.Context, rdb *redis.Client) (map[string]int64, error) {
	queues := []string{QueueEmail, QueueFiscal}
	cmds := make([]*redis.IntCmd, len(queues))
	_, err := rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, q := range queues {
			cmds[i] = pipe.LLen(ctx, DLQPrefix+q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(queues))
	for i, q := range queues {
		out[q] = cmds[i].Val()
	}
	return out, nil
}
