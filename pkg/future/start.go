package future

import "context"

// Start creates a Manager and begins executing op on a new goroutine.
// The fetch outcome surfaces through the manager's state; observe it by
// subscribing. Useful when a manager should load as soon as it exists:
//
//	users := future.Start(ctx, fetchUsers, future.WithName("users"))
func Start[T any](ctx context.Context, op Operation[T], opts ...Option) *Manager[T] {
	m := New[T](opts...)
	go func() {
		_, _ = m.Execute(ctx, op)
	}()
	return m
}
