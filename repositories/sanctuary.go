//go:generate go run go.uber.org/mock/mockgen -source=sanctuary.go -destination=../mocks/mock_sanctuary_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"sanctuary/domain"
	"sanctuary/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type ISanctuaryRepository interface {
	Create(sanctuary domain.Sanctuary) error
	Get(id string) (domain.Sanctuary, error)
	AppendSubmission(submission domain.Submission, now time.Time) (domain.Sanctuary, error)
	ListSubmissions(sanctuaryID string) ([]domain.Submission, error)
}

type SanctuaryRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSanctuaryRepository(db *badger.DB, log *slog.Logger) SanctuaryRepository {
	return SanctuaryRepository{db: db, log: log}
}

func sanctuaryKey(id string) []byte {
	return []byte("sanctuary:" + id)
}

func submissionPrefix(sanctuaryID string) []byte {
	return []byte(fmt.Sprintf("submission:%s:", sanctuaryID))
}

// Submission keys carry the 1-based position padded on 19 digits so that a
// prefix scan returns them in append order.
func submissionKey(sanctuaryID string, seq int) []byte {
	return append(submissionPrefix(sanctuaryID), []byte(fmt.Sprintf("%019d", seq))...)
}

func (r SanctuaryRepository) Create(sanctuary domain.Sanctuary) error {
	err := update(r.db, func(txn *badger.Txn) error {
		return setJSON(txn, sanctuaryKey(sanctuary.ID), sanctuary)
	})
	if err != nil {
		r.logFailure("create", sanctuary.ID, err)
	}
	return classify(err, errors.ErrSessionNotFound)
}

func (r SanctuaryRepository) Get(id string) (domain.Sanctuary, error) {
	var sanctuary domain.Sanctuary
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, sanctuaryKey(id), &sanctuary)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		r.logFailure("get", id, err)
	}
	return sanctuary, classify(err, errors.ErrSessionNotFound)
}

// AppendSubmission appends a submission and bumps the sanctuary counters in
// the same transaction. The sanctuary must exist and be live at now.
// Two concurrent appends conflict on the sanctuary key and one is replayed,
// so each submission lands exactly once at a distinct position.
func (r SanctuaryRepository) AppendSubmission(submission domain.Submission, now time.Time) (domain.Sanctuary, error) {
	var sanctuary domain.Sanctuary
	err := update(r.db, func(txn *badger.Txn) error {
		sanctuary = domain.Sanctuary{}
		if err := getJSON(txn, sanctuaryKey(submission.SanctuaryID), &sanctuary); err != nil {
			return err
		}
		if !sanctuary.IsLive(now) {
			return fmt.Errorf("%w: sanctuary %s", errors.ErrSessionExpired, sanctuary.ID)
		}
		seq := sanctuary.SubmissionCount + 1
		if err := setJSON(txn, submissionKey(sanctuary.ID, seq), submission); err != nil {
			return err
		}
		sanctuary.SubmissionCount = seq
		sanctuary.LastSubmissionAt = lo.ToPtr(submission.Timestamp)
		return setJSON(txn, sanctuaryKey(sanctuary.ID), sanctuary)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) && !errors.Is(err, errors.ErrSessionExpired) {
		r.logFailure("append_submission", submission.SanctuaryID, err)
	}
	return sanctuary, classify(err, errors.ErrSessionNotFound)
}

// ListSubmissions returns every submission of a sanctuary in append order.
func (r SanctuaryRepository) ListSubmissions(sanctuaryID string) ([]domain.Submission, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := submissionPrefix(sanctuaryID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			raw = append(raw, value)
		}
		return nil
	})
	if err != nil {
		r.logFailure("list_submissions", sanctuaryID, err)
		return nil, classify(err, errors.ErrSessionNotFound)
	}

	submissions := make([]domain.Submission, 0, len(raw))
	for _, b := range raw {
		var s domain.Submission
		if err = json.Unmarshal(b, &s); err != nil {
			return nil, errors.Wrap(errors.ErrPersistence, err)
		}
		submissions = append(submissions, s)
	}
	return submissions, nil
}

func (r SanctuaryRepository) logFailure(operation, sanctuaryID string, err error) {
	r.log.Error("Sanctuary store failure",
		"operation", operation,
		"sanctuary_id", sanctuaryID,
		"error", err)
}
