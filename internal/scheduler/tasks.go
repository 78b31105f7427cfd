// Package scheduler enqueues and processes background tasks over asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadNotification = "leads.notify_new"

// LeadNotificationPayload carries everything the worker needs to render the
// new-lead email without a database read.
type LeadNotificationPayload struct {
	LeadID           string `json:"leadId"`
	TenantID         string `json:"tenantId"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Source           string `json:"source"`
	Score            int    `json:"score"`
	Category         string `json:"category"`
	CapitalAvailable int64  `json:"capitalAvailable"`
}

func NewLeadNotificationTask(payload LeadNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotification, data), nil
}

func ParseLeadNotificationPayload(task *asynq.Task) (LeadNotificationPayload, error) {
	var payload LeadNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadNotificationPayload{}, err
	}
	return payload, nil
}
