package app

// DefaultAIDifficulty is used when a match request names no difficulty.
// Keep this centralized so hosts and tests agree on the fallback level.
const DefaultAIDifficulty = "normal"
