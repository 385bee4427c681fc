package connection

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"testing"
)

// fakeAdmin answers each line with a canned reply chosen by the command.
func fakeAdmin(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				sc := bufio.NewScanner(conn)
				for sc.Scan() {
					switch sc.Text() {
					case "routes":
						fmt.Fprintln(conn, `{"ok":true,"data":["/","/version"]}`)
					case "garbage":
						fmt.Fprintln(conn, `not json`)
					default:
						fmt.Fprintln(conn, `{"ok":false,"error":"[PG-OPS-4000] unknown command: `+sc.Text()+`","code":"PG-OPS-4000"}`)
					}
				}
			}(conn)
		}
	}()
	return path
}

func TestSocketClient_Execute(t *testing.T) {
	c := NewSocketClient(fakeAdmin(t))
	defer c.Close()

	data, err := c.Execute("routes")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(data) != `["/","/version"]` {
		t.Errorf("data = %s", data)
	}

	// Same connection, next command.
	_, err = c.Execute("bogus")
	var re *ReplyError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ReplyError", err)
	}
	if re.Code != "PG-OPS-4000" || !strings.Contains(re.Error(), "unknown command") {
		t.Errorf("reply error = %+v", re)
	}

	if _, err := c.Execute("garbage"); err == nil || !strings.Contains(err.Error(), "decode reply") {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestSocketClient_Errors(t *testing.T) {
	c := NewSocketClient(filepath.Join(t.TempDir(), "missing.sock"))
	if _, err := c.Execute("status"); err == nil {
		t.Error("expected connect error")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close without conn: %v", err)
	}

	c = NewSocketClient(fakeAdmin(t))
	defer c.Close()
	if _, err := c.Execute("status\nshutdown"); err == nil {
		t.Error("multi-line command should be rejected")
	}
}
