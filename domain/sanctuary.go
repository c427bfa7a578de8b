package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sanctuary is an anonymous submission inbox with a single owning host.
// Submissions are stored separately and only appended, never rewritten.
type Sanctuary struct {
	ID               string     `json:"id"`
	Topic            string     `json:"topic"`
	Description      string     `json:"description,omitempty"`
	Emoji            string     `json:"emoji,omitempty"`
	OwnerID          string     `json:"owner_id"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	IsActive         bool       `json:"is_active"`
	SubmissionCount  int        `json:"submission_count"`
	LastSubmissionAt *time.Time `json:"last_submission_at,omitempty"`
}

// IsLive reports whether the sanctuary accepts hosts and submissions at now.
func (s Sanctuary) IsLive(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// LastActivity is the time of the latest submission, or creation time if none.
func (s Sanctuary) LastActivity() time.Time {
	if s.LastSubmissionAt != nil {
		return *s.LastSubmissionAt
	}
	return s.CreatedAt
}

type SubmissionType string

const (
	SubmissionText  SubmissionType = "text"
	SubmissionVoice SubmissionType = "voice"
	SubmissionImage SubmissionType = "image"
)

// Submission is one message delivered into a sanctuary. Immutable once created.
type Submission struct {
	ID            string         `json:"id"`
	SanctuaryID   string         `json:"sanctuary_id"`
	ParticipantID string         `json:"participant_id"`
	Alias         string         `json:"alias"`
	Content       string         `json:"content"`
	Type          SubmissionType `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
}

// NewSubmissionID combines a millisecond timestamp with a random suffix so that
// bursts within the same millisecond still produce distinct ids.
func NewSubmissionID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("sub_%d_%s", at.UnixMilli(), suffix)
}
