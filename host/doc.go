// Package host provides an in-memory overlay host.
//
// Image implements overlay.Host together with overlay.Presenter,
// overlay.ResizeObserver, and overlay.PointerSource, so a session mounted
// into it needs no other host facilities. It is used for headless rendering
// (see cmd/overlaydemo) and in tests:
//
//	h := host.MustNewImage(800, 600, 1)
//	s := overlay.Mount(h, overlay.DefaultConfig())
//	defer s.Dispose()
//
//	h.Resize(1024, 768) // observed by the session
//	img := h.Snapshot()
package host
