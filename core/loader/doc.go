// Package loader registers features and mounts the enabled ones on the Fiber app.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Features are loaded in registration order. A failing feature stops LoadAll.
package loader
