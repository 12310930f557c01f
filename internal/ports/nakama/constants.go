package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcReplayToken is the Nakama RPC id clients call to get a spectator/replay token.
	RpcReplayToken = "replay_token"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "kmahjong_match"

	// MatchLabelKey_OpenSeats is the label key advertising open seats.
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch   int64 = 1
	OpDiscard      int64 = 2
	OpTsumo        int64 = 3
	OpKong         int64 = 4
	OpCallResponse int64 = 5

	// Server -> Client events
	OpMatchState    int64 = 101
	OpMatchStarted  int64 = 102
	OpRoundStarted  int64 = 103
	OpHandDealt     int64 = 104 // sent privately
	OpTurnStarted   int64 = 105
	OpTileDrawn     int64 = 106 // sent privately
	OpTileDiscarded int64 = 107
	OpCallsOffered  int64 = 108 // sent privately
	OpCallMade      int64 = 109
	OpRoundEnded    int64 = 110
	OpMatchEnded    int64 = 111
	OpGameError     int64 = 112
)
