package command

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/pagegate/internal/core/docroot"
	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/internal/core/service"
	"github.com/yndnr/pagegate/internal/server/localserver"
	"github.com/yndnr/pagegate/internal/server/webserver"
)

// backend is a running page server plus its admin socket.
type backend struct {
	addr    string
	socket  string
	srv     *webserver.Server
	stopped chan struct{}
}

// startBackend serves a temp document root; auth is enabled when users is
// not empty.
func startBackend(t *testing.T, users map[string]string) *backend {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<p>home</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	resolver, err := docroot.New(root, docroot.WithIndexPages("index.html"))
	if err != nil {
		t.Fatal(err)
	}

	b := webserver.NewBuilder()
	echo := webserver.HandlerFunc(func(w webserver.ResponseWriter, r *webserver.Request) error {
		w.Header().Set("Content-Type", "text/plain")
		_, err := io.WriteString(w, r.Method+" "+string(r.Body))
		return err
	})
	if err := b.Register("/echo", echo); err != nil {
		t.Fatal(err)
	}
	if err := b.RegisterDefault(webserver.NewDefaultHandler(resolver, false, nil)); err != nil {
		t.Fatal(err)
	}
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var auth webserver.Authenticator
	if len(users) > 0 {
		cfg := service.DefaultAuthConfig()
		cfg.Realm = "Test Realm"
		auth = service.NewDigestAuthenticator(cfg, domain.NewUserStore(users))
	}
	srv, err := webserver.New(webserver.DefaultConfig(), table, auth, nil)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	waitServing(t, srv)

	be := &backend{addr: ln.Addr().String(), srv: srv, stopped: make(chan struct{}, 1)}
	admin := localserver.New(filepath.Join(t.TempDir(), "admin.sock"), localserver.NewHandler(srv, func() {
		be.stopped <- struct{}{}
	}), nil)
	if err := admin.Listen(); err != nil {
		t.Fatal(err)
	}
	adminDone := make(chan error, 1)
	go func() { adminDone <- admin.Serve() }()
	be.socket = admin.Path()

	t.Cleanup(func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = admin.Shutdown(sctx)
		<-adminDone
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("page server did not stop")
		}
	})
	return be
}

// waitServing blocks until Serve has installed its listener.
func waitServing(t *testing.T, srv *webserver.Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == nil || !srv.Serving() {
		if time.Now().After(deadline) {
			t.Fatal("page server did not start serving")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// run executes the CLI with an isolated profile file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithConfig(t, filepath.Join(t.TempDir(), "cli.yaml"), args...)
}

func runWithConfig(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	for _, name := range []string{"SERVER", "USER", "PASSWORD", "SOCKET", "OPS"} {
		t.Setenv("PAGEGATE_CLI_"+name, "")
	}
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	full := append([]string{"pagegate-cli", "--config", cfgPath}, args...)
	err := app.Run(full)
	return out.String(), err
}
