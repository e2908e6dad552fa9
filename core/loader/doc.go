// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its enablement and
// route registration.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of available features:
//   - Register() adds a feature; registration order is load order.
//   - LoadAll() loads enabled features and rejects duplicate names.
//
// Features such as 'jobs', 'playground' and 'integrity' are developed and tested in
// isolation and only meet in cmd/start.go.
package loader
