package queue

import (
	"github.com/vk-0-7/media-poster/internal/service"
)

type Queue struct {
	runner service.AutoPostService
}

func NewQueue(runner service.AutoPostService) *Queue {
	return &Queue{runner: runner}
}

const TaskTypeSchedulePost = "schedule:post"

type SchedulePostPayload struct {
	PostID string `json:"post_id"`
}
