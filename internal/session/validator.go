package session

// Validate confirms the cached user belongs to the cached company. It
// runs after hydration and after every login or register.
//
// Returns true when the pairing is consistent or when either record is
// absent (nothing to cross-check). On a mismatch it logs, clears the
// session exactly once, and returns false: a mismatched user/company
// pairing is a cross-tenant leakage risk, so this is a hard stop, not a
// warning. Check and clear happen under one lock acquisition, so two
// concurrent callers cannot both observe the mismatch.
func (s *Store) Validate() bool {
	s.mu.Lock()
	user := s.session.User
	company := s.session.Company

	if user == nil || company == nil || user.CompanyID == company.ID {
		s.mu.Unlock()
		return true
	}

	snapshot := s.clearLocked()
	s.mu.Unlock()

	s.logger.Error("session user/company mismatch, forcing logout",
		"user_id", user.ID,
		"user_company_id", user.CompanyID,
		"company_id", company.ID,
	)
	s.client.ClearToken()
	s.notify(snapshot)
	return false
}
