// Package buildinfo exposes the PageGate build identity.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/yndnr/pagegate/internal/infra/buildinfo.Version=v1.0.0 \
//	    -X github.com/yndnr/pagegate/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// When a binary is built without ldflags, Get falls back to the module
// version and VCS revision recorded by the Go toolchain.
package buildinfo
