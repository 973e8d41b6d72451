package host

import "golang.org/x/sync/singleflight"

// SaveGuard serializes saves per key. A save started while another one for
// the same key is in flight does not run; it receives the in-flight result.
// The zero value is ready to use.
type SaveGuard struct {
	g singleflight.Group
}

// Do runs fn unless a call for key is already running. shared reports
// whether the result came from another caller's run.
func (s *SaveGuard) Do(key string, fn func() (bool, error)) (ok, shared bool, err error) {
	v, err, shared := s.g.Do(key, func() (any, error) {
		return fn()
	})
	ok, _ = v.(bool)
	return ok, shared, err
}

// Forget makes the next Do for key run fn even if a call is in flight.
func (s *SaveGuard) Forget(key string) { s.g.Forget(key) }
