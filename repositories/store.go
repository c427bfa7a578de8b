package repositories

import (
	"encoding/json"

	"sanctuary/errors"

	"github.com/dgraph-io/badger/v4"
)

// Badger transactions are optimistic: two writers touching the same key
// conflict and one of them must replay its read-modify-write.
const maxConflictRetries = 64

func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		if err = db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// classify keeps domain sentinels intact and turns anything else into a persistence failure.
func classify(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return notFound
	case errors.Is(err, errors.ErrSessionNotFound),
		errors.Is(err, errors.ErrSessionExpired),
		errors.Is(err, errors.ErrAuthorization),
		errors.Is(err, errors.ErrPersistence):
		return err
	default:
		return errors.Wrap(errors.ErrPersistence, err)
	}
}
