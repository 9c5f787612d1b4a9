package domain

import "time"

// Difficulty is one of the five ordered question tiers, one per game level.
type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "very_easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

// DifficultyForLevel maps a game level (1-5) to its question tier.
func DifficultyForLevel(level int) Difficulty {
	switch level {
	case 1:
		return DifficultyVeryEasy
	case 2:
		return DifficultyEasy
	case 3:
		return DifficultyMedium
	case 4:
		return DifficultyHard
	default:
		return DifficultyVeryHard
	}
}

// GameMode selects the mistake policy for a room.
type GameMode string

const (
	ModeClassic     GameMode = "classic"     // first mistake ends the game
	ModeAlternative GameMode = "alternative" // two mistakes end the game, one drops levels
	ModeCustom      GameMode = "custom"
)

// TimeMode describes how the advisory time budget evolves across levels.
type TimeMode string

const (
	TimeFixed       TimeMode = "fixed"
	TimeProgressive TimeMode = "progressive"
	TimeRegressive  TimeMode = "regressive"
)

// SessionStatus is the session lifecycle state. InProgress is the only
// non-terminal status.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusWon        SessionStatus = "won"
	StatusLost       SessionStatus = "lost"
	StatusForfeited  SessionStatus = "forfeited"
)

// Terminal reports whether the status absorbs further answers and helps.
func (s SessionStatus) Terminal() bool {
	return s != StatusInProgress
}

// HelpType identifies one of the three one-shot power-ups.
type HelpType string

const (
	HelpEliminate HelpType = "eliminate"
	HelpAudience  HelpType = "audience"
	HelpChat      HelpType = "chat"
)

// AnswerTimeout is the reserved answer value a client submits when the
// player's time budget expires. The engine discards the question without
// penalty.
const AnswerTimeout = "__timeout__"

const (
	MaxLevel       = 5
	RoundsPerLevel = 3
	RankingLimit   = 10
)

// Question is an immutable multiple-choice question owned by the question
// bank. Incorrect is never empty; Eliminable is an optional subset of
// Incorrect pre-marked for the eliminate help.
type Question struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	Theme      string     `json:"theme"`
	Statement  string     `json:"statement"`
	Difficulty Difficulty `json:"difficulty"`
	Correct    string     `json:"correct"`
	Incorrect  []string   `json:"incorrect"`
	Eliminable []string   `json:"eliminable,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Alternatives returns the correct answer followed by the incorrect ones.
// Presentation order is shuffled by the selector, never here.
func (q Question) Alternatives() []string {
	alts := make([]string, 0, 1+len(q.Incorrect))
	alts = append(alts, q.Correct)
	alts = append(alts, q.Incorrect...)
	return alts
}

// RoomConfig is the immutable rule snapshot taken when a room is created.
// Sessions reference it through their room and never mutate it.
type RoomConfig struct {
	Themes      []string `json:"themes"` // empty = all themes allowed
	Mode        GameMode `json:"mode"`
	AllowRepeat bool     `json:"allowRepeat"`
	TimeLimit   int      `json:"timeLimit"` // seconds, 0 = untimed; advisory only
	TimeMode    TimeMode `json:"timeMode"`
	HideLevel   bool     `json:"hideLevel"`
	ShowRanking bool     `json:"showRanking"`
	// ScoreTable maps level to points by index (level-1). Nil or a zero
	// entry falls back to the default level*10 formula.
	ScoreTable []int `json:"scoreTable,omitempty"`
}

// PointsForLevel resolves the award for a correct answer at the given level.
func (c RoomConfig) PointsForLevel(level int) int {
	if level >= 1 && level <= len(c.ScoreTable) && c.ScoreTable[level-1] > 0 {
		return c.ScoreTable[level-1]
	}
	return level * 10
}

// Room is a hosted quiz instance with a join code. The host's ID scopes the
// question pool the room draws from.
type Room struct {
	ID        string     `json:"id"`
	PIN       string     `json:"pin"` // 6-digit numeric, unique among active rooms
	HostID    string     `json:"hostId"`
	Config    RoomConfig `json:"config"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PlayerConfig is the subset of room configuration exposed to players when a
// session starts. The full room record never crosses the boundary.
type PlayerConfig struct {
	TimeLimit   int      `json:"timeLimit"`
	TimeMode    TimeMode `json:"timeMode"`
	HideLevel   bool     `json:"hideLevel"`
	ShowRanking bool     `json:"showRanking"`
	ScoreTable  []int    `json:"scoreTable,omitempty"`
}

// PlayerView projects the player-facing config subset out of a room config.
func (c RoomConfig) PlayerView() PlayerConfig {
	return PlayerConfig{
		TimeLimit:   c.TimeLimit,
		TimeMode:    c.TimeMode,
		HideLevel:   c.HideLevel,
		ShowRanking: c.ShowRanking,
		ScoreTable:  c.ScoreTable,
	}
}

// HelpUsage tracks the three independent one-shot help flags. A flag, once
// set, never resets for the lifetime of the session.
type HelpUsage struct {
	Eliminate bool `json:"eliminate"`
	Audience  bool `json:"audience"`
	Chat      bool `json:"chat"`
}

// Used reports whether the given help type was already consumed.
func (h HelpUsage) Used(t HelpType) bool {
	switch t {
	case HelpEliminate:
		return h.Eliminate
	case HelpAudience:
		return h.Audience
	case HelpChat:
		return h.Chat
	}
	return false
}

// Mark consumes the given help type.
func (h *HelpUsage) Mark(t HelpType) {
	switch t {
	case HelpEliminate:
		h.Eliminate = true
	case HelpAudience:
		h.Audience = true
	case HelpChat:
		h.Chat = true
	}
}

// AnswerRecord is one entry of a session's ordered answer history. The
// statement is snapshotted so post-game review survives question edits.
type AnswerRecord struct {
	QuestionID string    `json:"questionId"`
	Statement  string    `json:"statement"`
	Submitted  string    `json:"submitted"`
	Correct    string    `json:"correct"`
	Right      bool      `json:"right"`
	At         time.Time `json:"at"`
}

// Session is one player's run through the quiz and the only mutable unit of
// core state. It is mutated exclusively by the game service and becomes
// immutable once Status turns terminal.
type Session struct {
	ID       string         `json:"id"`
	RoomID   string         `json:"roomId"`
	Nickname string         `json:"nickname"`
	Level    int            `json:"level"` // 1..MaxLevel
	Round    int            `json:"round"` // 1..RoundsPerLevel
	Score    int            `json:"score"`
	Answered []string       `json:"answered"` // question IDs, append-only
	HelpUsed HelpUsage      `json:"helpUsed"`
	Mistakes int            `json:"mistakes"` // alternative mode only
	Status   SessionStatus  `json:"status"`
	History  []AnswerRecord `json:"history"`
	// CurrentQuestionID is the last question issued to the player. Answer
	// and help submissions must reference it, closing the replay gap where
	// a client could re-answer an older question.
	CurrentQuestionID string    `json:"currentQuestionId"`
	Version           int64     `json:"version"` // optimistic concurrency token
	CreatedAt         time.Time `json:"createdAt"`
}

// HasAnswered reports whether the question ID was already used this session.
func (s *Session) HasAnswered(questionID string) bool {
	for _, id := range s.Answered {
		if id == questionID {
			return true
		}
	}
	return false
}

// RankingEntry is a derived leaderboard row. It is projected from session
// state, never independently mutated.
type RankingEntry struct {
	SessionID string        `json:"sessionId"`
	Nickname  string        `json:"nickname"`
	Score     int           `json:"score"`
	Status    SessionStatus `json:"status"`
	At        time.Time     `json:"at"`
}

// PresentedQuestion is the player-facing question payload: the statement plus
// all alternatives in a per-presentation shuffled order, with the correct one
// undisclosed.
type PresentedQuestion struct {
	ID           string   `json:"id"`
	Statement    string   `json:"statement"`
	Theme        string   `json:"theme"`
	Level        int      `json:"level"`
	Alternatives []string `json:"alternatives"`
}
