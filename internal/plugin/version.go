package plugin

import (
	"encoding/json"

	"github.com/yndnr/pagegate/internal/infra/buildinfo"
	"github.com/yndnr/pagegate/internal/server/webserver"
)

// VersionPath is where the version plugin answers.
const VersionPath = "/version"

type versionPlugin struct{}

// Version returns the plugin serving build information as JSON.
func Version() Plugin { return versionPlugin{} }

func (versionPlugin) Name() string { return "buildinfo" }

func (versionPlugin) Register(b *webserver.Builder) error {
	return b.Register(VersionPath, webserver.HandlerFunc(serveVersion))
}

func serveVersion(w webserver.ResponseWriter, _ *webserver.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(buildinfo.Get())
}
