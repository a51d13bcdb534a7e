package server

// Outbound wire messages. Field names and type strings match what the game
// client listens for; cmd/schema reflects ProtocolCatalog into a JSON schema.

type RoomCreatedMessage struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type JoinedRoomMessage struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	Number int    `json:"playerNumber"`
}

type RoomReadyMessage struct {
	Type string `json:"type"`
}

type WaitingForMatchMessage struct {
	Type string `json:"type"`
}

type MatchmakingCancelledMessage struct {
	Type string `json:"type"`
}

type GameStartedMessage struct {
	Type string `json:"type"`
}

type GameResetMessage struct {
	Type    string        `json:"type"`
	Players []Participant `json:"players"`
	Ball    Ball          `json:"ball"`
	Scores  Scores        `json:"scores"`
}

type UpdateScoresMessage struct {
	Type   string `json:"type"`
	Scores Scores `json:"scores"`
}

type UpdateBallMessage struct {
	Type string `json:"type"`
	Ball Ball   `json:"ball"`
}

type UpdatePaddlesMessage struct {
	Type    string        `json:"type"`
	Players []Participant `json:"players"`
}

type GamePausedMessage struct {
	Type string `json:"type"`
}

type GameResumedMessage struct {
	Type string `json:"type"`
}

type GameOverMessage struct {
	Type       string `json:"type"`
	Winner     int    `json:"winner"`
	FinalScore Scores `json:"finalScore"`
}

type SessionTimeoutMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type PauseTimeoutMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type PlayerLeftMessage struct {
	Type string `json:"type"`
}

type RoomJoinErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ProtocolCatalog enumerates every outbound message for schema generation.
type ProtocolCatalog struct {
	RoomCreated          RoomCreatedMessage          `json:"roomCreated"`
	JoinedRoom           JoinedRoomMessage           `json:"joinedRoom"`
	RoomReady            RoomReadyMessage            `json:"roomReady"`
	WaitingForMatch      WaitingForMatchMessage      `json:"waitingForMatch"`
	MatchmakingCancelled MatchmakingCancelledMessage `json:"matchmakingCancelled"`
	GameStarted          GameStartedMessage          `json:"gameStarted"`
	GameReset            GameResetMessage            `json:"gameReset"`
	UpdateScores         UpdateScoresMessage         `json:"updateScores"`
	UpdateBall           UpdateBallMessage           `json:"updateBall"`
	UpdatePaddles        UpdatePaddlesMessage        `json:"updatePaddles"`
	GamePaused           GamePausedMessage           `json:"gamePaused"`
	GameResumed          GameResumedMessage          `json:"gameResumed"`
	GameOver             GameOverMessage             `json:"gameOver"`
	SessionTimeout       SessionTimeoutMessage       `json:"sessionTimeout"`
	PauseTimeout         PauseTimeoutMessage         `json:"pauseTimeout"`
	PlayerLeft           PlayerLeftMessage           `json:"playerLeft"`
	RoomJoinError        RoomJoinErrorMessage        `json:"roomJoinError"`
}

func newRoomCreated(code string) RoomCreatedMessage {
	return RoomCreatedMessage{Type: "roomCreated", Room: code}
}

func newJoinedRoom(code string, number int) JoinedRoomMessage {
	return JoinedRoomMessage{Type: "joinedRoom", Room: code, Number: number}
}

func newRoomReady() RoomReadyMessage { return RoomReadyMessage{Type: "roomReady"} }

func newWaitingForMatch() WaitingForMatchMessage {
	return WaitingForMatchMessage{Type: "waitingForMatch"}
}

func newMatchmakingCancelled() MatchmakingCancelledMessage {
	return MatchmakingCancelledMessage{Type: "matchmakingCancelled"}
}

func newGameStarted() GameStartedMessage { return GameStartedMessage{Type: "gameStarted"} }

func newGameReset(players []Participant, ball Ball, scores Scores) GameResetMessage {
	return GameResetMessage{Type: "gameReset", Players: players, Ball: ball, Scores: scores}
}

func newUpdateScores(scores Scores) UpdateScoresMessage {
	return UpdateScoresMessage{Type: "updateScores", Scores: scores}
}

func newUpdateBall(ball Ball) UpdateBallMessage {
	return UpdateBallMessage{Type: "updateBall", Ball: ball}
}

func newUpdatePaddles(players []Participant) UpdatePaddlesMessage {
	return UpdatePaddlesMessage{Type: "updatePaddles", Players: players}
}

func newGamePaused() GamePausedMessage   { return GamePausedMessage{Type: "gamePaused"} }
func newGameResumed() GameResumedMessage { return GameResumedMessage{Type: "gameResumed"} }

func newGameOver(winner int, final Scores) GameOverMessage {
	return GameOverMessage{Type: "gameOver", Winner: winner, FinalScore: final}
}

func newSessionTimeout(reason string) SessionTimeoutMessage {
	return SessionTimeoutMessage{Type: "sessionTimeout", Reason: reason}
}

func newPauseTimeout(reason string) PauseTimeoutMessage {
	return PauseTimeoutMessage{Type: "pauseTimeout", Reason: reason}
}

func newPlayerLeft() PlayerLeftMessage { return PlayerLeftMessage{Type: "playerLeft"} }

func newRoomJoinError(reason string) RoomJoinErrorMessage {
	return RoomJoinErrorMessage{Type: "roomJoinError", Reason: reason}
}
