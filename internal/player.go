package internal

import "time"

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Hat    string `json:"hat,omitempty"`

	Score    int `json:"score"`
	NewScore int `json:"new_score"` // points earned in the current turn
	Rank     int `json:"rank"`

	JoinedAt time.Time `json:"joined_at"`
}

type PlayerSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Hat      string `json:"hat,omitempty"`
	Score    int    `json:"score"`
	NewScore int    `json:"new_score"`
	Rank     int    `json:"rank"`
}

func NewPlayer(id, name string) *Player {
	if name == "" {
		name = "Anonymous"
	}
	return &Player{ID: id, Name: name, JoinedAt: time.Now()}
}

// ResetTurnState clears what a player earned during the last turn.
func (p *Player) ResetTurnState() {
	p.NewScore = 0
}

func (p *Player) Award(points int) {
	p.Score += points
	p.NewScore += points
}

func CreatePlayerSnapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Hat:      p.Hat,
		Score:    p.Score,
		NewScore: p.NewScore,
		Rank:     p.Rank,
	}
}

func SnapshotPlayers(players []*Player) []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(players))
	for _, p := range players {
		out = append(out, CreatePlayerSnapshot(p))
	}
	return out
}
