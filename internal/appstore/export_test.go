package appstore

import "time"

// SetNow overrides the clock of the signer.
func (s *Signer) SetNow(now func() time.Time) {
	s.now = now
}
