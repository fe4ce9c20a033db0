package types

type ExpansionRef struct {
	Id   string `json:"id"`
	Name string `json:"name,optional"`
}

type BoardGame struct {
	Id          string         `json:"id,optional"`
	Name        string         `json:"name"`
	ReleaseYear int            `json:"releaseYear,optional"`
	Publisher   string         `json:"publisher,optional"`
	MinPlayers  int            `json:"min_players,optional"`
	MaxPlayers  int            `json:"max_players,optional"`
	Type        string         `json:"type"`
	BaseGame    string         `json:"baseGame,optional"`
	Standalone  bool           `json:"standalone,optional"`
	Expansions  []ExpansionRef `json:"expansions,optional"`
	CreatedAt   string         `json:"createdAt,optional"`
	UpdatedAt   string         `json:"updatedAt,optional"`
}

type BoardGameData struct {
	BoardGame BoardGame `json:"board_game"`
}

type BoardGameWriteRequest struct {
	Data BoardGameData `json:"data"`
}

type BoardGameIdRequest struct {
	Id string `path:"id"`
}

type BoardGameDeleteRequest struct {
	Id string `json:"id"`
}

type BoardGameSearchRequest struct {
	Q         string `form:"q,optional"`
	Field     string `form:"field,optional"`
	Direction string `form:"direction,optional"`
}

type BoardGameListResponse struct {
	BoardGames []BoardGame `json:"board_games"`
}

type BoardGameCreateResponse struct {
	Id string `json:"id"`
}

type Violation struct {
	Kind      string `json:"kind"`
	RecordId  string `json:"record_id"`
	RelatedId string `json:"related_id"`
	Detail    string `json:"detail,omitempty"`
}

type AuditResponse struct {
	Violations []Violation `json:"violations"`
}

type RepairReport struct {
	Pass     string `json:"pass"`
	RecordId string `json:"record_id"`
	Error    string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Message string         `json:"message"`
	Error   string         `json:"error,omitempty"`
	Id      string         `json:"id,omitempty"`
	Repairs []RepairReport `json:"repairs,omitempty"`
}
