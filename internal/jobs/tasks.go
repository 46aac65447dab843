// Package jobs defines background task types and the queue client used to
// enqueue them. Execution happens in cmd/worker.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskAccessCodeExpired fires when a quotation's access code reaches its
// scheduled expiry. The payload pins the expiry the task was scheduled for,
// so a code rotated in the meantime makes the task a no-op.
const TaskAccessCodeExpired = "quotations.code_expired"

// TaskShareGrantPurge removes share grants whose audit-retention window has
// passed. Enqueued periodically.
const TaskShareGrantPurge = "clients.grant_purge"

// AccessCodeExpiredPayload identifies the code generation whose expiry fired.
type AccessCodeExpiredPayload struct {
	QuotationID string    `json:"quotationId"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ShareGrantPurgePayload bounds the purge to grants expired before the cutoff.
type ShareGrantPurgePayload struct {
	Cutoff time.Time `json:"cutoff"`
}

// NewAccessCodeExpiredTask builds the expiry task for asynq.
func NewAccessCodeExpiredTask(payload AccessCodeExpiredPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAccessCodeExpired, data), nil
}

// ParseAccessCodeExpiredPayload decodes the expiry task payload.
func ParseAccessCodeExpiredPayload(task *asynq.Task) (AccessCodeExpiredPayload, error) {
	var payload AccessCodeExpiredPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AccessCodeExpiredPayload{}, err
	}
	return payload, nil
}

// NewShareGrantPurgeTask builds the purge task for asynq.
func NewShareGrantPurgeTask(payload ShareGrantPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShareGrantPurge, data), nil
}

// ParseShareGrantPurgePayload decodes the purge task payload.
func ParseShareGrantPurgePayload(task *asynq.Task) (ShareGrantPurgePayload, error) {
	var payload ShareGrantPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ShareGrantPurgePayload{}, err
	}
	return payload, nil
}
