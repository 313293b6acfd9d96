package async

import "sync"

// ConcurrentMap is a map safe for concurrent use. The zero value is usable
// for reads and writes.
type ConcurrentMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// initForWrite caller must hold a write lock. Read operations do not need to
// call this - they must all be compatible with a nil map.
func (cf *ConcurrentMap[K, V]) initForWrite() {
	if cf.m == nil {
		cf.m = make(map[K]V)
	}
}

func (cf *ConcurrentMap[K, V]) Len() int {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	return len(cf.m)
}

func (cf *ConcurrentMap[K, V]) Set(k K, v V) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.initForWrite()
	cf.m[k] = v
}

func (cf *ConcurrentMap[K, V]) Get(k K) (v V, ok bool) {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	if cf.m != nil {
		v, ok = cf.m[k]
	}
	return
}

// GetOrCompute returns the value for key 'k', computing and storing it via
// computeFunc when absent. The lock is held across computeFunc, so at most
// one computation runs per key.
func (cf *ConcurrentMap[K, V]) GetOrCompute(k K, computeFunc func(k K) (V, error)) (V, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.initForWrite()
	if v, ok := cf.m[k]; ok {
		return v, nil
	}
	v, err := computeFunc(k)
	if err != nil {
		return v, err
	}
	cf.m[k] = v
	return v, nil
}

func (cf *ConcurrentMap[K, V]) Keys() []K {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	if cf.m == nil {
		return nil
	}
	ks := make([]K, 0, len(cf.m))
	for k := range cf.m {
		ks = append(ks, k)
	}
	return ks
}
