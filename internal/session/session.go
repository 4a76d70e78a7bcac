package session

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// ErrWriteFailed is the sentinel for a failed credential write.
var ErrWriteFailed = errors.StorageError("could not save credentials").Build()

// Save writes the three credential fields. Stores implementing BatchSetter write
// them in one transaction; others receive one Set per key, and a failed Set restores
// the previously saved values so the stored fields never mix two sessions.
func Save(ctx context.Context, store Store, creds credentials.Credentials) error {
	values := map[string]string{
		KeyAccountID:       creds.AccountID,
		KeyPrimaryAPIKey:   creds.PrimaryAPIKey,
		KeySecondaryAPIKey: creds.SecondaryAPIKey,
	}
	if batch, ok := store.(BatchSetter); ok {
		if err := batch.SetMany(ctx, values); err != nil {
			return errors.WrapError(err, errors.CategoryStorage, ErrWriteFailed.Message()).Build()
		}
		return nil
	}

	previous, err := snapshot(ctx, store)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, ErrWriteFailed.Message()).Build()
	}
	for i, key := range credentialKeys {
		if err := store.Set(ctx, key, values[key]); err != nil {
			if rerr := restore(ctx, store, previous, credentialKeys[:i]); rerr != nil {
				err = stderrors.Join(err, rerr)
			}
			return errors.WrapError(err, errors.CategoryStorage, ErrWriteFailed.Message()).
				WithContext("key", key).
				Build()
		}
	}
	return nil
}

var credentialKeys = []string{KeyAccountID, KeyPrimaryAPIKey, KeySecondaryAPIKey}

// snapshot reads the stored credential fields; absent keys are left out of the map.
func snapshot(ctx context.Context, store Store) (map[string]string, error) {
	previous := make(map[string]string, len(credentialKeys))
	for _, key := range credentialKeys {
		v, err := store.Get(ctx, key)
		switch {
		case stderrors.Is(err, ErrNotFound):
		case err != nil:
			return nil, err
		default:
			previous[key] = v
		}
	}
	return previous, nil
}

// restore puts keys back to their snapshot values, deleting keys that were absent.
func restore(ctx context.Context, store Store, previous map[string]string, keys []string) error {
	var errs []error
	for _, key := range keys {
		var err error
		if v, ok := previous[key]; ok {
			err = store.Set(ctx, key, v)
		} else if err = store.Delete(ctx, key); stderrors.Is(err, ErrNotFound) {
			err = nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Load returns the persisted credentials. ok is false when no account id is stored.
func Load(ctx context.Context, store Store) (creds credentials.Credentials, ok bool, err error) {
	fields := []struct {
		key string
		dst *string
	}{
		{KeyAccountID, &creds.AccountID},
		{KeyPrimaryAPIKey, &creds.PrimaryAPIKey},
		{KeySecondaryAPIKey, &creds.SecondaryAPIKey},
	}
	for _, f := range fields {
		v, gerr := store.Get(ctx, f.key)
		if stderrors.Is(gerr, ErrNotFound) {
			if f.key == KeyAccountID {
				return credentials.Credentials{}, false, nil
			}
			continue
		}
		if gerr != nil {
			return credentials.Credentials{}, false, errors.WrapError(gerr, errors.CategoryStorage, "could not read saved credentials").
				WithContext("key", f.key).
				Build()
		}
		*f.dst = v
	}
	return creds, true, nil
}

// Clear removes the persisted credentials (sign out).
func Clear(ctx context.Context, store Store) error {
	for _, key := range credentialKeys {
		if err := store.Delete(ctx, key); err != nil && !stderrors.Is(err, ErrNotFound) {
			return errors.WrapError(err, errors.CategoryStorage, "could not clear saved credentials").
				WithContext("key", key).
				Build()
		}
	}
	return nil
}
