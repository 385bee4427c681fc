package localserver

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/yndnr/pagegate/internal/core/domain"
	"github.com/yndnr/pagegate/internal/infra/buildinfo"
	"github.com/yndnr/pagegate/internal/server/webserver"
	"github.com/yndnr/pagegate/internal/telemetry/logger"
)

// Backend is the page server as seen by the admin socket.
type Backend interface {
	Stats() webserver.Stats
	Routes() []string
}

// Reply is one response line.
type Reply struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// Status is the reply to the status command.
type Status struct {
	Version           string    `json:"version" yaml:"version"`
	Addr              string    `json:"addr" yaml:"addr"`
	Serving           bool      `json:"serving" yaml:"serving"`
	StartedAt         time.Time `json:"started_at" yaml:"started_at"`
	Uptime            string    `json:"uptime" yaml:"uptime"`
	ActiveConnections int64     `json:"active_connections" yaml:"active_connections"`
	RequestsServed    uint64    `json:"requests_served" yaml:"requests_served"`
	Routes            int       `json:"routes" yaml:"routes"`
	LogLevel          string    `json:"log_level" yaml:"log_level"`
}

// Handler executes admin commands.
type Handler struct {
	backend Backend
	stop    func()
	now     func() time.Time
}

// NewHandler creates a Handler. stop is called by the shutdown command.
func NewHandler(backend Backend, stop func()) *Handler {
	return &Handler{backend: backend, stop: stop, now: time.Now}
}

// Execute runs one command line.
func (h *Handler) Execute(line string) Reply {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return failure(domain.ErrUnknownCommand.WithDetails("empty command"))
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "status":
		return success(h.status())
	case "routes":
		routes := h.backend.Routes()
		if routes == nil {
			routes = []string{}
		}
		return success(routes)
	case "loglevel":
		return h.logLevel(args)
	case "shutdown":
		if h.stop != nil {
			h.stop()
		}
		return success(map[string]string{"status": "stopping"})
	default:
		return failure(domain.ErrUnknownCommand.WithDetails(cmd))
	}
}

func (h *Handler) status() Status {
	st := h.backend.Stats()
	s := Status{
		Version:           buildinfo.Get().Version,
		Addr:              st.Addr,
		Serving:           st.Serving,
		StartedAt:         st.StartedAt,
		ActiveConnections: st.ActiveConnections,
		RequestsServed:    st.RequestsServed,
		Routes:            st.Routes,
		LogLevel:          logger.GetLevel(),
	}
	if !st.StartedAt.IsZero() {
		s.Uptime = h.now().Sub(st.StartedAt).Truncate(time.Second).String()
	}
	return s
}

func (h *Handler) logLevel(args []string) Reply {
	if len(args) == 0 {
		return success(map[string]string{"level": logger.GetLevel()})
	}
	if !logger.ValidLevel(args[0]) {
		return failure(domain.ErrBadRequest.WithDetails("invalid log level: " + args[0]))
	}
	previous := logger.GetLevel()
	logger.SetLevel(args[0])
	return success(map[string]string{"previous": previous, "level": logger.GetLevel()})
}

func success(v any) Reply {
	data, err := json.Marshal(v)
	if err != nil {
		return failure(domain.ErrInternalServer.WithCause(err))
	}
	return Reply{OK: true, Data: data}
}

func failure(err *domain.DomainError) Reply {
	return Reply{Error: err.Error(), Code: err.Code}
}
