// Package credential implements the shared-password gate.
package credential

// Set is an immutable set of accepted shared passwords. It is safe for
// concurrent use because it is never mutated after construction.
type Set struct {
	passwords map[string]struct{}
}

// New builds a Set from the given passwords. Empty strings are ignored so an
// unset configuration value can never admit an empty password.
func New(passwords ...string) *Set {
	s := &Set{passwords: make(map[string]struct{}, len(passwords))}
	for _, p := range passwords {
		if p == "" {
			continue
		}
		s.passwords[p] = struct{}{}
	}
	return s
}

// Verify reports whether candidate exactly matches one of the passwords.
func (s *Set) Verify(candidate string) bool {
	if s == nil || candidate == "" {
		return false
	}
	_, ok := s.passwords[candidate]
	return ok
}

// Len returns the number of accepted passwords.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.passwords)
}
