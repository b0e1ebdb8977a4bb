package score

// SeatScore is one seat of a game: who sat there, what they posted and what it is worth.
type SeatScore struct {
	Name      string  `json:"name"`
	RawInput  string  `json:"raw_input"`
	RawPoints int     `json:"raw_points"`
	Point     float64 `json:"point"`
	Rank      int     `json:"rank"`
}

// GameResult is a calculated game keyed by the timestamp of its posting.
type GameResult struct {
	TS          string      `json:"ts"`
	Seats       []SeatScore `json:"seats"`
	Comment     string      `json:"comment,omitempty"`
	Deposit     int         `json:"deposit"`
	RuleVersion string      `json:"rule_version"`
	OriginPoint int         `json:"origin_point"`
	ReturnPoint int         `json:"return_point"`
	RankPoint   []int       `json:"rank_point"`
	DrawSplit   bool        `json:"draw_split"`
	Source      string      `json:"source"`
}

// RawSeat is a (name, expression) pair as it appeared in a posting.
type RawSeat struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// RawFields is the unevaluated content of a score posting.
type RawFields struct {
	Seats   []RawSeat
	Comment string
}

// RemarkPair is a (name, matter) pair parsed from a remark posting.
type RemarkPair struct {
	Name   string `json:"name"`
	Matter string `json:"matter"`
}

// Remark is a free-text annotation attached to a recorded game.
type Remark struct {
	ThreadTS string `json:"thread_ts"`
	EventTS  string `json:"event_ts"`
	Name     string `json:"name"`
	Matter   string `json:"matter"`
	Source   string `json:"source"`
}

// HasValidData reports whether every seat carries a name, an input and a rank.
func (g *GameResult) HasValidData() bool {
	if g == nil || len(g.Seats) == 0 {
		return false
	}
	for _, s := range g.Seats {
		if s.Name == "" || s.RawInput == "" || s.Rank == 0 {
			return false
		}
	}
	return true
}

// PlayerList returns the seat names in seat order.
func (g *GameResult) PlayerList() []string {
	names := make([]string, len(g.Seats))
	for i, s := range g.Seats {
		names[i] = s.Name
	}
	return names
}

// HasPlayer reports whether name sits at one of the seats.
func (g *GameResult) HasPlayer(name string) bool {
	for _, s := range g.Seats {
		if s.Name == name {
			return true
		}
	}
	return false
}

// RawSum is the total of the posted raw scores.
func (g *GameResult) RawSum() int {
	sum := 0
	for _, s := range g.Seats {
		sum += s.RawPoints
	}
	return sum
}
