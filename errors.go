package navgate

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStorageRequired is returned by [Builder.Build] when no durable
	// storage backend was provided.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrAlreadyBuilt is returned when Build is called twice on one builder.
	ErrAlreadyBuilt = errors.New("builder already built")
	// ErrLoginUnconfigured is returned by [Engine.Login] when the engine
	// was built without a login endpoint.
	ErrLoginUnconfigured = errors.New("login endpoint not configured")
	// ErrLoginFailed is the generic login failure: bad credentials and an
	// unreachable backend are deliberately indistinguishable.
	ErrLoginFailed = errors.New("login failed")
)
