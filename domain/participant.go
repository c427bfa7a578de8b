// Package domain contains core concepts of the sanctuary system.
// This file defines the participant projection used by moderation views.
// It is rebuilt from live connections and never stored.
package domain

type ConnectionQuality string

const (
	QualityUnknown ConnectionQuality = "unknown"
	QualityGood    ConnectionQuality = "good"
	QualityPoor    ConnectionQuality = "poor"
)

// AudioState is the per-connection state inside an audio room.
type AudioState struct {
	IsHost       bool
	IsModerator  bool
	IsSpeaker    bool
	IsMuted      bool
	HandRaised   bool
	SpeakingTime int64
}

// Participant is a view of one member of an audio room.
type Participant struct {
	ID           string            `json:"id"`
	Alias        string            `json:"alias"`
	IsHost       bool              `json:"isHost"`
	IsModerator  bool              `json:"isModerator"`
	IsSpeaker    bool              `json:"isSpeaker"`
	IsBlocked    bool              `json:"isBlocked"`
	IsMuted      bool              `json:"isMuted"`
	HandRaised   bool              `json:"handRaised"`
	Quality      ConnectionQuality `json:"connectionQuality"`
	AudioLevel   float64           `json:"audioLevel"`
	SpeakingTime int64             `json:"speakingTime"`
}

func NewParticipant(id, alias string, state AudioState) Participant {
	return Participant{
		ID:           id,
		Alias:        alias,
		IsHost:       state.IsHost,
		IsModerator:  state.IsModerator,
		IsSpeaker:    state.IsSpeaker || state.IsHost,
		IsMuted:      state.IsMuted,
		HandRaised:   state.HandRaised,
		Quality:      QualityUnknown,
		SpeakingTime: state.SpeakingTime,
	}
}
