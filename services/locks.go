package services

import "sync"

// Settlement and reversal read profile counters before writing them back, so
// two overlapping runs can corrupt counts. Every settlement or reversal takes
// the match lock for the whole pass; every per-player mutation additionally
// takes that player's lock, since two different matches can share a player.
// This service is deployed as a single writer; a multi-instance deployment
// would need row locks instead.
var (
	matchLocks  sync.Map // matchID → *sync.Mutex
	playerLocks sync.Map // playerID → *sync.Mutex
)

func lockMatch(matchID string) *sync.Mutex {
	mu, _ := matchLocks.LoadOrStore(matchID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m
}

func lockPlayer(playerID string) *sync.Mutex {
	mu, _ := playerLocks.LoadOrStore(playerID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m
}
