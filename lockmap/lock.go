// lockmap is a sharded lock map keyed by name.
//
// The API is as if LockMap consisted of a lock for every possible string
// (for the vfs these are host-file paths); LockMap.Acquire(k) acquires the
// lock associated with k and LockMap.Release(k) releases it.
//
// The implementation doesn't actually maintain all of these locks; it
// instead maintains a fixed collection of shards so that shard i is
// responsible for maintaining the lock state of all k whose hash is i modulo
// NSHARD. Acquiring a lock requires synchronizing with any threads accessing
// the same shard.
package lockmap

import (
	"hash/fnv"
	"sync"
)

type lockState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type lockShard struct {
	mu    *sync.Mutex
	state map[string]*lockState
}

func mkLockShard() *lockShard {
	mu := new(sync.Mutex)
	return &lockShard{
		mu:    mu,
		state: make(map[string]*lockState),
	}
}

func (lmap *lockShard) acquire(key string) {
	lmap.mu.Lock()
	for {
		state, ok := lmap.state[key]
		if !ok {
			state = &lockState{cond: sync.NewCond(lmap.mu)}
			lmap.state[key] = state
		}
		if !state.held {
			state.held = true
			break
		}
		state.waiters += 1
		state.cond.Wait()
		state.waiters -= 1
	}
	lmap.mu.Unlock()
}

func (lmap *lockShard) release(key string) {
	lmap.mu.Lock()
	state, ok := lmap.state[key]
	if !ok || !state.held {
		lmap.mu.Unlock()
		panic("lockmap: release of unheld lock " + key)
	}
	state.held = false
	if state.waiters > 0 {
		state.cond.Signal()
	} else {
		delete(lmap.state, key)
	}
	lmap.mu.Unlock()
}

const NSHARD uint64 = 43

type LockMap struct {
	shards []*lockShard
}

func MkLockMap() *LockMap {
	var shards []*lockShard
	for i := uint64(0); i < NSHARD; i++ {
		shards = append(shards, mkLockShard())
	}
	return &LockMap{shards: shards}
}

func (lmap *LockMap) shard(key string) *lockShard {
	h := fnv.New64a()
	h.Write([]byte(key))
	return lmap.shards[h.Sum64()%NSHARD]
}

func (lmap *LockMap) Acquire(key string) {
	lmap.shard(key).acquire(key)
}

func (lmap *LockMap) Release(key string) {
	lmap.shard(key).release(key)
}
