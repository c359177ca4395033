package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleSchedulePostTask(ctx context.Context, task *asynq.Task) error {
	var payload SchedulePostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	outcome := q.runner.PublishOne(ctx, payload.PostID)
	switch {
	case outcome.Success:
		log.Printf("Published scheduled post %s: %s", payload.PostID, outcome.Permalink)
		return nil
	case outcome.Skipped:
		// Validation rejections never clear on retry; drop the task.
		log.Printf("Skipped scheduled post %s: %s", payload.PostID, outcome.Error)
		return nil
	default:
		log.Printf("Error publishing scheduled post %s: %s", payload.PostID, outcome.Error)
		return fmt.Errorf("publish post %s: %s", payload.PostID, outcome.Error)
	}
}
