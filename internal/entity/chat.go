package entity

import "time"

type Author string

const (
	AuthorSystem Author = "system"
	AuthorUser   Author = "user"
)

// ChatEntry is one bubble of the transcript. Entries are never changed once
// appended.
type ChatEntry struct {
	ID        uint64    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// QuestionID and Question are set on the entry that introduces a question.
	QuestionID string              `json:"question_id,omitempty"`
	Question   *QuestionDefinition `json:"-"`
}

// SessionState is a read-only snapshot of a questionnaire session.
type SessionState struct {
	CurrentQuestionID string
	CurrentQuestion   *QuestionDefinition
	Answers           map[string]AnswerValue
	Transcript        []ChatEntry
	Complete          bool
	// Typing is set while a side-channel reply is pending.
	Typing bool
}

// Status derives the lifecycle status from the snapshot.
func (s *SessionState) Status() SessionStatus {
	switch {
	case s.Complete:
		return SessionStatusCompleted
	case s.CurrentQuestionID == "":
		return SessionStatusStarting
	default:
		return SessionStatusInProgress
	}
}
