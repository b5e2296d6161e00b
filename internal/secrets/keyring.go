// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SuperLocalMemory Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/zalando/go-keyring"

	slmerr "github.com/plures/superlocalmemory-mcp/pkg/errors"
)

// indexSuffix forms the key under which a JSON list of stored key
// names is kept per service. go-keyring cannot enumerate keys, so the
// store maintains its own index to support List.
const indexSuffix = "::keys-index"

// KeyringStore implements Store on the OS keyring: Keychain on macOS,
// secret-service over D-Bus on Linux, Credential Manager on Windows.
type KeyringStore struct{}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if err := validateRef(service, key); err != nil {
		return err
	}

	if err := keyring.Set(service, key, value); err != nil {
		return slmerr.Wrapf(err, slmerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return s.addToIndex(service, key)
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validateRef(service, key); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", slmerr.Errorf(slmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", slmerr.Wrapf(err, slmerr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validateRef(service, key); err != nil {
		return err
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return slmerr.Errorf(slmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return slmerr.Wrapf(err, slmerr.CodeSecretDeleteFailure, "deleting secret %s/%s", service, key)
	}
	return s.removeFromIndex(service, key)
}

func (s *KeyringStore) List(service string) ([]string, error) {
	return s.loadIndex(service)
}

func validateRef(service, key string) error {
	if service == "" {
		return slmerr.New(slmerr.CodeSecretInvalidInput, "secret service must not be empty")
	}
	if key == "" {
		return slmerr.New(slmerr.CodeSecretInvalidInput, "secret key must not be empty")
	}
	return nil
}

func (s *KeyringStore) loadIndex(service string) ([]string, error) {
	raw, err := keyring.Get(service, service+indexSuffix)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, slmerr.Wrapf(err, slmerr.CodeSecretListFailure, "loading key index for service %s", service)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, slmerr.Wrapf(err, slmerr.CodeSecretListFailure, "decoding key index for service %s", service)
	}
	return keys, nil
}

func (s *KeyringStore) saveIndex(service string, keys []string) error {
	indexKey := service + indexSuffix

	if len(keys) == 0 {
		if delErr := keyring.Delete(service, indexKey); delErr != nil && !errors.Is(delErr, keyring.ErrNotFound) {
			slog.Debug("failed to clean up empty key index", "service", service, "error", delErr)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return slmerr.Wrapf(err, slmerr.CodeSecretListFailure, "encoding key index for service %s", service)
	}
	if err := keyring.Set(service, indexKey, string(data)); err != nil {
		return slmerr.Wrapf(err, slmerr.CodeSecretListFailure, "saving key index for service %s", service)
	}
	return nil
}

func (s *KeyringStore) addToIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return s.saveIndex(service, append(keys, key))
}

func (s *KeyringStore) removeFromIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}

	filtered := slices.DeleteFunc(keys, func(k string) bool { return k == key })
	return s.saveIndex(service, filtered)
}
