package llm

import "errors"

var (
	// ErrMissingCredentials indicates no API key was supplied for the
	// resolved provider, neither per-request nor in server config.
	ErrMissingCredentials = errors.New("missing llm credentials")

	// ErrUnsupportedProvider indicates a provider outside the closed enum.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty llm response")
)
