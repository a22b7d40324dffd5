package lockmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusive(t *testing.T) {
	lmap := MkLockMap()
	counters := map[string]*int{"a": new(int), "b": new(int)}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		for _, k := range []string{"a", "b"} {
			k := k
			wg.Add(1)
			go func() {
				defer wg.Done()
				lmap.Acquire(k)
				v := *counters[k]
				*counters[k] = v + 1
				lmap.Release(k)
			}()
		}
	}
	wg.Wait()
	assert.Equal(t, 100, *counters["a"])
	assert.Equal(t, 100, *counters["b"])
}

func TestReleaseUnheld(t *testing.T) {
	lmap := MkLockMap()
	assert.Panics(t, func() { lmap.Release("nope") })
}
