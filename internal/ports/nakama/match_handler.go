package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"kmahjong/internal/app"
	"kmahjong/internal/bot"
	"kmahjong/internal/config"
	"kmahjong/internal/domain"
	"kmahjong/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// interRoundDelayTicks is the pause between a round ending and the next
// deal, giving clients time to show the result.
const interRoundDelayTicks = 3

// chipsPerPoint converts final match score deltas into wallet chips.
const chipsPerPoint = 10

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [4]string `json:"seats"`      // user IDs, empty string means seat is empty
	OwnerSeat int       `json:"owner_seat"` // seat index of the match owner
	Tick      int64     `json:"tick"`

	Presences map[string]runtime.Presence `json:"-"` // userId -> presence for targeted messaging
	App       *app.Service                `json:"-"`
	Match     *domain.Match               `json:"-"` // active match, nil while in the lobby
	Bots      map[string]*bot.Agent       `json:"-"`
	Economy   ports.EconomyPort           `json:"-"`

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`           // min seconds a bot waits
	BotMaxDelay          int   `json:"bot_max_delay"`           // max seconds a bot waits
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // seconds before auto-filling with bots
	BotWaitUntil         int64 `json:"bot_wait_until"`          // tick when the acting bot moves
	LastSinglePlayerTick int64 `json:"last_single_player_tick"` // tick when a single player started waiting

	CallDecisions map[int]domain.CallKind `json:"-"` // collected reactions to the pending discard
	CallDeadline  int64                   `json:"-"` // tick when missing reactions become passes
	TurnDeadline  int64                   `json:"-"` // tick when a human turn is auto-played
	NextRoundTick int64                   `json:"-"` // tick when the next round deals
	Settled       bool                    `json:"-"` // wallet settlement done for this match
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		OwnerSeat: -1,
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
	}

	// Read environment variables for bot configuration.
	env := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["kmahjong_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["kmahjong_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["kmahjong_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["kmahjong_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = config.BotAutoFillDelaySeconds()
	}

	label, err := marshalLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace (before the match starts).
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Match == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// Assign seat: try empty seats first, then bots (pre-match only).
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Match == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. Mid-match
// a leaver's seat is handed to a bot so the round keeps moving.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId != p.GetUserId() {
				continue
			}
			if matchState.Match != nil && !matchState.Match.Over {
				identity := bot.GetBotIdentity(i)
				matchState.Seats[i] = identity.UserID
				if agent, err := bot.NewAgent(identity.UserID); err == nil {
					matchState.Bots[identity.UserID] = agent
				}
				logger.Info("MatchLeave: User %s left mid-match, seat %d taken over by bot %s.", p.GetUserId(), i, identity.UserID)
			} else {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
			}
			break
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(ctx, matchState, dispatcher, logger, msg)
		case OpDiscard:
			mh.handleDiscard(ctx, matchState, dispatcher, logger, msg)
		case OpTsumo:
			mh.handleTsumo(ctx, matchState, dispatcher, logger, msg)
		case OpKong:
			mh.handleKong(ctx, matchState, dispatcher, logger, msg)
		case OpCallResponse:
			mh.handleCallResponse(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.processTimers(ctx, matchState, dispatcher, logger)

	return matchState
}

// processBots auto-fills solo lobbies and plays bot turns.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with bots when a single human has waited long enough.
	if state.Match == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetBotIdentity(i)
						botID := identity.UserID
						state.Seats[i] = botID

						agent, err := bot.NewAgent(botID)
						if err != nil {
							logger.Error("Failed to create bot agent for %s: %v", botID, err)
						} else {
							state.Bots[botID] = agent
						}

						logger.Info("processBots: Added bot %s (%s) to seat %d", identity.DisplayName, botID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Play bot turns.
	round := state.Match.Round
	if round == nil || round.Phase != domain.RoundDiscarding {
		state.BotWaitUntil = 0
		return
	}

	currentUserID := state.Seats[round.Current]
	if !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", currentUserID, round.Current, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent := mh.agentFor(state, currentUserID, logger)
	if agent == nil {
		return
	}

	seat := round.Current
	move, err := agent.Play(round, seat, round.CanTsumo, round.SelfKongs(seat))
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", currentUserID, err)
	}

	var events []app.Event
	switch {
	case move.Tsumo:
		events, err = state.App.DeclareTsumo(state.Match, seat)
	case move.Kong != nil:
		events, err = state.App.DeclareKong(state.Match, seat, *move.Kong)
	default:
		events, err = state.App.Discard(state.Match, seat, move.Discard)
	}
	if err != nil {
		logger.Error("processBots: Bot %s move rejected: %v", currentUserID, err)
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// processTimers drives everything that waits on the clock: call windows,
// human turn timeouts and the inter-round pause.
func (mh *matchHandler) processTimers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Match == nil {
		return
	}

	// Deal the next round after the pause.
	if state.Match.Round == nil && !state.Match.Over {
		if state.NextRoundTick == 0 {
			state.NextRoundTick = state.Tick + interRoundDelayTicks
		}
		if state.Tick >= state.NextRoundTick {
			state.NextRoundTick = 0
			events, err := state.App.StartRound(state.Match)
			if err != nil {
				logger.Error("processTimers: Failed to start round: %v", err)
				return
			}
			mh.updateLabel(state, dispatcher, logger)
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		}
		return
	}

	round := state.Match.Round
	if round == nil {
		return
	}

	switch round.Phase {
	case domain.RoundCalling:
		mh.maybeResolveCalls(ctx, state, dispatcher, logger)
	case domain.RoundDiscarding:
		seat := round.Current
		if !isHumanSeat(state.Seats[:], seat) {
			state.TurnDeadline = 0
			return
		}
		if state.TurnDeadline == 0 {
			state.TurnDeadline = state.Tick + int64(config.TurnDurationSeconds())
			return
		}
		if state.Tick < state.TurnDeadline {
			return
		}
		state.TurnDeadline = 0

		// Time is up: discard the freshest tile for the absent player.
		tiles := round.Seats[seat].Tiles
		tile := tiles[len(tiles)-1]
		if round.LastDrawn != nil {
			tile = *round.LastDrawn
		}
		logger.Info("processTimers: Seat %d timed out, auto-discarding %s", seat, tile)
		events, err := state.App.Discard(state.Match, seat, tile)
		if err != nil {
			logger.Error("processTimers: Auto-discard failed: %v", err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}
}

// maybeResolveCalls settles the pending discard once every offered seat
// has answered or the window has closed. Bot answers are collected the
// moment the window opens.
func (mh *matchHandler) maybeResolveCalls(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	round := state.Match.Round
	if round == nil || round.Phase != domain.RoundCalling || round.Pending == nil {
		return
	}

	mh.openCallWindow(state, logger)

	allDecided := true
	for seat := range round.Pending.Offers {
		if _, ok := state.CallDecisions[seat]; !ok {
			allDecided = false
			break
		}
	}
	if !allDecided && state.Tick < state.CallDeadline {
		return
	}

	decisions := state.CallDecisions
	state.CallDecisions = nil
	state.CallDeadline = 0

	events, err := state.App.ResolveCalls(state.Match, decisions)
	if err != nil {
		logger.Error("maybeResolveCalls: %v", err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// openCallWindow starts the reaction window for the pending discard and
// collects bot answers up front. Idempotent within one window.
func (mh *matchHandler) openCallWindow(state *MatchState, logger runtime.Logger) {
	if state.CallDecisions != nil {
		return
	}
	round := state.Match.Round

	state.CallDecisions = make(map[int]domain.CallKind)
	state.CallDeadline = state.Tick + int64(config.CallDurationSeconds())

	for seat, opts := range round.Pending.Offers {
		userID := state.Seats[seat]
		if !isBotUserId(userID) {
			continue
		}
		if agent := mh.agentFor(state, userID, logger); agent != nil {
			state.CallDecisions[seat] = agent.React(round, seat, round.Pending.Tile, opts)
		} else {
			state.CallDecisions[seat] = domain.CallPass
		}
	}
}

func (mh *matchHandler) agentFor(state *MatchState, userID string, logger runtime.Logger) *bot.Agent {
	if agent, exists := state.Bots[userID]; exists {
		return agent
	}
	agent, err := bot.NewAgent(userID)
	if err != nil {
		logger.Error("Failed to create fallback agent for %s: %v", userID, err)
		return nil
	}
	state.Bots[userID] = agent
	return agent
}

func (mh *matchHandler) senderSeat(state *MatchState, userID string) int {
	for i, seatUserId := range state.Seats {
		if seatUserId == userID {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) handleStartMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	logger.Info("StartMatch: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Match != nil {
		logger.Warn("StartMatch: Match already running.")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartMatch: User %s tried to start but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.GetHumanPlayerCount() < app.MinHumansToStartMatch {
		logger.Warn("StartMatch: Need at least %d human players.", app.MinHumansToStartMatch)
		return
	}

	// Fill the remaining seats with bots.
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		if !state.BotsEnabled {
			logger.Warn("StartMatch: Cannot start with open seats while bots are disabled.")
			return
		}
		identity := bot.GetBotIdentity(i)
		state.Seats[i] = identity.UserID
		if agent, err := bot.NewAgent(identity.UserID); err == nil {
			state.Bots[identity.UserID] = agent
		}
	}

	match, events := state.App.StartMatch()
	state.Match = match
	state.Settled = false

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	roundEvents, err := state.App.StartRound(state.Match)
	if err != nil {
		logger.Error("StartMatch: Failed to start first round: %v", err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, roundEvents)

	logger.Info("StartMatch: Match started with dealer seat %d.", match.Dealer)
}

func (mh *matchHandler) handleDiscard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Match == nil {
		logger.Warn("handleDiscard: Match not started.")
		return
	}

	tile, err := parseDiscard(msg.GetData())
	if err != nil {
		logger.Warn("handleDiscard: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.Discard(state.Match, senderSeat, tile)
	if err != nil {
		logger.Warn("handleDiscard: User %s (seat %d) failed to discard %s: %v", senderID, senderSeat, tile, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.TurnDeadline = 0
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleTsumo(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Match == nil {
		logger.Warn("handleTsumo: Match not started.")
		return
	}

	events, err := state.App.DeclareTsumo(state.Match, senderSeat)
	if err != nil {
		logger.Warn("handleTsumo: User %s (seat %d) failed: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.TurnDeadline = 0
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleKong(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Match == nil {
		logger.Warn("handleKong: Match not started.")
		return
	}

	opt, err := parseKong(msg.GetData())
	if err != nil {
		logger.Warn("handleKong: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.DeclareKong(state.Match, senderSeat, opt)
	if err != nil {
		logger.Warn("handleKong: User %s (seat %d) failed: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.TurnDeadline = 0
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleCallResponse(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.senderSeat(state, senderID)

	if state.Match == nil || state.Match.Round == nil || state.Match.Round.Pending == nil {
		logger.Warn("handleCallResponse: No pending discard.")
		return
	}
	mh.openCallWindow(state, logger)

	if _, offered := state.Match.Round.Pending.Offers[senderSeat]; !offered {
		mh.sendError(state, dispatcher, logger, senderID, 400, domain.ErrNoSuchCall.Error())
		return
	}

	kind, err := parseCallResponse(msg.GetData())
	if err != nil {
		logger.Warn("handleCallResponse: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.CallDecisions[senderSeat] = kind
	mh.maybeResolveCalls(ctx, state, dispatcher, logger)
}

// dispatchEvents forwards app events to the clients and runs the wallet
// settlement once the match ends.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64

	switch ev.Kind {
	case app.EventMatchStarted:
		opCode = OpMatchStarted
	case app.EventRoundStarted:
		opCode = OpRoundStarted
		mh.updateLabel(state, dispatcher, logger)
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventTurnStarted:
		opCode = OpTurnStarted
	case app.EventTileDrawn:
		opCode = OpTileDrawn
	case app.EventTileDiscarded:
		opCode = OpTileDiscarded
	case app.EventCallsOffered:
		opCode = OpCallsOffered
	case app.EventCallMade:
		opCode = OpCallMade
	case app.EventRoundEnded:
		opCode = OpRoundEnded
	case app.EventMatchEnded:
		opCode = OpMatchEnded
		mh.settleMatch(ctx, state, logger, ev)
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.RecipientSeats) > 0 {
		for _, seat := range ev.RecipientSeats {
			if seat < 0 || seat >= len(state.Seats) {
				continue
			}
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they
		// are bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleMatch converts the final score movement into wallet chips.
func (mh *matchHandler) settleMatch(ctx context.Context, state *MatchState, logger runtime.Logger, ev app.Event) {
	if state.Settled || state.Economy == nil || state.Match == nil {
		return
	}
	state.Settled = true

	updates := make([]ports.WalletUpdate, 0, len(state.Seats))
	for seat, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		delta := int64(state.Match.Scores[seat]-domain.StartingScore) * chipsPerPoint
		if delta == 0 {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: delta,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "match_settlement",
			},
		})
	}
	if len(updates) == 0 {
		return
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("Failed to update balances: %v", err)
	}
}

// matchStateView is the public snapshot broadcast on joins.
type matchStateView struct {
	Seats     []seatView `json:"seats"`
	OwnerSeat int        `json:"owner_seat"`
	Tick      int64      `json:"tick"`
	Round     int        `json:"round"`
	Playing   bool       `json:"playing"`
}

type seatView struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"is_owner"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	HandSize    int    `json:"hand_size"`
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	view := matchStateView{OwnerSeat: state.OwnerSeat, Tick: state.Tick}
	if state.Match != nil {
		view.Round = state.Match.RoundNumber
		view.Playing = !state.Match.Over
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}

		sv := seatView{
			UserID:      userID,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			DisplayName: displayName,
		}
		if state.Match != nil {
			sv.Score = state.Match.Scores[i]
			if round := state.Match.Round; round != nil {
				sv.HandSize = len(round.Seats[i].Tiles)
			}
		}
		view.Seats = append(view.Seats, sv)
	}

	bytes, err := json.Marshal(view)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true)
}

// marshalLabel renders the advertised match label with protojson so the
// indexer sees stable field names.
func marshalLabel(state *MatchState) (string, error) {
	phase := "lobby"
	roundNumber := 0
	if state.Match != nil {
		phase = "playing"
		roundNumber = state.Match.RoundNumber
		if state.Match.Over {
			phase = "ended"
		}
	}

	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"game":                  "kmahjong",
		"phase":                 phase,
		"round":                 roundNumber,
	})
	if err != nil {
		return "", err
	}

	bytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := marshalLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// sendError sends a game error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(gameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal game error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
