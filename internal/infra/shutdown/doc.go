// Package shutdown coordinates graceful process shutdown.
//
// A Handler waits for SIGINT, SIGTERM or the cancellation of a context
// (the cooperative stop requested through the shutdown page or the admin
// socket), then runs the registered hooks in reverse registration order
// under a shared timeout:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	err := h.Wait(ctx)
package shutdown
