// Package plugin holds the built-in handler plugins.
//
// A plugin contributes routes to the handler table before it is frozen:
//
//	b := webserver.NewBuilder()
//	if err := plugin.RegisterAll(b, logger, plugin.Version(), images); err != nil {
//	    return err
//	}
//
// Registration failures are fatal at start-up.
package plugin
