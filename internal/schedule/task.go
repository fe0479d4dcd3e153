package schedule

import "context"

// Task 스케줄러가 실행하는 단위 작업
type Task interface {
	Run(ctx context.Context) error
	Name() string
}
