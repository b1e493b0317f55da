package nakama

import "google.golang.org/grpc/codes"

// RPC ids registered with Nakama.
const (
	RpcQuickMatch   = "quick_match"
	RpcResumeMatch  = "resume_match"
	RpcSetupProfile = "setup_profile"
	RpcGetProfile   = "get_profile"
	RpcUnlockCard   = "unlock_card"
	RpcSaveDeck     = "save_deck"
	RpcListDecks    = "list_decks"
	RpcExportDeck   = "export_deck"
	RpcImportDeck   = "import_deck"
	RpcLLMToken     = "llm_token"

	// MatchNameCardDuel is the authoritative match handler name registered with Nakama.
	MatchNameCardDuel = "cardduel_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch int64 = 1
	OpBeginTurn  int64 = 2
	OpPlayCard   int64 = 3
	OpEndTurn    int64 = 4
	OpConcede    int64 = 5
	OpMulligan   int64 = 6

	// Server -> Client events
	OpMatchState       int64 = 100 // sent privately on join
	OpMatchStarted     int64 = 101 // sent privately
	OpTurnBegan        int64 = 102
	OpCardPlayed       int64 = 103
	OpPlayRejected     int64 = 104 // sent privately
	OpOverplayPenalty  int64 = 105
	OpTurnEnded        int64 = 106
	OpMatchEnded       int64 = 107
	OpMulliganDone     int64 = 108
	OpOpponentThinking int64 = 109
	OpError            int64 = 199
)

// Storage collections.
const (
	collectionSnapshots  = "match_snapshots"
	collectionProfiles   = "profiles"
	collectionDecks      = "decks"
	collectionOnboarding = "onboarding"

	snapshotKey     = "current"
	profileKey      = "profile"
	keyWelcomeGrant = "welcome_tokens_v1"

	// currencyTokens is the wallet key used for card unlocks.
	currencyTokens = "tokens"
)

// Error codes handed to runtime.NewError and sent in OpError payloads.
const (
	errCodeInvalidArgument    = int(codes.InvalidArgument)
	errCodeNotFound           = int(codes.NotFound)
	errCodeFailedPrecondition = int(codes.FailedPrecondition)
	errCodeInternal           = int(codes.Internal)
	errCodeUnauthenticated    = int(codes.Unauthenticated)
)
