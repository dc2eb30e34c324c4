package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

func TestTask_Wait(t *testing.T) {
	afterRan := false
	task := startTask(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	}, func() { afterRan = true })

	v, err := task.Wait()
	if err != nil || v != 42 {
		t.Fatalf("Wait() = %d, %v", v, err)
	}
	if !afterRan {
		t.Error("after hook should run before Done closes")
	}
	select {
	case <-task.Done():
	default:
		t.Error("Done() should be closed after Wait")
	}
}

func TestTask_Cancel(t *testing.T) {
	started := make(chan struct{})
	task := startTask(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", domain.ErrCanceled.WithCause(ctx.Err())
	}, nil)

	<-started
	task.Cancel()
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish after Cancel")
	}
	if _, err := task.Wait(); !errors.Is(err, domain.ErrCanceled) {
		t.Errorf("Wait() error = %v, want ErrCanceled", err)
	}
}

func TestFailedTask(t *testing.T) {
	task := failedTask[int](domain.ErrOperationInFlight)
	task.Cancel()
	if _, err := task.Wait(); !errors.Is(err, domain.ErrOperationInFlight) {
		t.Errorf("Wait() error = %v", err)
	}
}
