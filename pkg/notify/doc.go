// Package notify provides the ordered change-notification primitive that
// loadable managers are built on.
//
// A Notifier holds an ordered list of callbacks. Subscribe registers a
// callback and returns a cancel function; Notify invokes every callback
// in subscription order. Callbacks may subscribe or unsubscribe from
// inside a notification pass.
//
//	n := notify.New()
//	cancel := n.Subscribe(func() {
//	    fmt.Println("changed")
//	})
//	defer cancel()
//
//	n.Notify()
//
// # Deferred delivery
//
// A Notifier constructed with a Scheduler can deliver asynchronously:
// NotifyDeferred schedules the notification pass instead of running it
// on the caller's stack. runloop.Loop implements Scheduler.
//
//	loop := runloop.New()
//	n := notify.New(notify.WithScheduler(loop))
//	n.NotifyDeferred() // callbacks run on the loop goroutine
//
// Without a scheduler, NotifyDeferred falls back to synchronous delivery.
//
// # Merging
//
// Merge builds a Notifier that fires whenever any of its sources fire,
// which is useful for observing several managers through one callback:
//
//	both := notify.Merge(users.Notifier(), posts.Notifier())
//	both.Subscribe(rerender)
package notify
