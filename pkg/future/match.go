package future

// Match folds the manager's visible phase into a single value: the
// three-branch render pattern without a renderer. All three callbacks
// must be non-nil.
//
// Example:
//
//	body := future.Match(users,
//	    func() string { return "loading..." },
//	    func(err error) string { return "failed: " + err.Error() },
//	    func(list []User) string { return fmt.Sprintf("%d users", len(list)) },
//	)
func Match[T, R any](m *Manager[T], onLoading func() R, onError func(error) R, onReady func(T) R) R {
	snap := m.Snapshot()
	switch snap.View {
	case ViewReady:
		return onReady(snap.Data)
	case ViewError:
		return onError(snap.Err)
	default:
		return onLoading()
	}
}
