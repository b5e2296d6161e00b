// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

// Package secrets stores credentials for remote embedding providers
// outside of config files, backed by the OS keyring. Config values may
// reference stored secrets with the keyring://service/key URI scheme.
package secrets

// DefaultService is the keyring service name used for this
// application's own credentials, such as the embedding API key.
const DefaultService = "superlocalmemory"

// Store provides secure secret storage. Implementations may use OS
// keyrings, encrypted files, or other backends.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	// A missing key yields an error classified as CodeSecretNotFound.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	// A missing key yields an error classified as CodeSecretNotFound.
	Delete(service, key string) error

	// List returns all key names stored under the given service.
	List(service string) ([]string, error)
}
