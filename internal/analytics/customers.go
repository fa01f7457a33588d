// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package analytics

// MarkPremium adds customerID to the premium set. Repeated calls are no-ops.
func (s *Service) MarkPremium(customerID string) {
	s.flagsMu.Lock()
	s.premium[customerID] = struct{}{}
	s.flagsMu.Unlock()
	s.logger.Info().Str("customer_id", customerID).Msg("Customer marked premium")
}

// IsPremium reports whether customerID is premium.
func (s *Service) IsPremium(customerID string) bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	_, ok := s.premium[customerID]
	return ok
}

// Blacklist adds customerID to the blacklist. Repeated calls are no-ops.
func (s *Service) Blacklist(customerID string) {
	s.flagsMu.Lock()
	s.blacklisted[customerID] = struct{}{}
	s.flagsMu.Unlock()
	s.logger.Info().Str("customer_id", customerID).Msg("Customer blacklisted")
}

// IsBlacklisted reports whether customerID is blacklisted.
func (s *Service) IsBlacklisted(customerID string) bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	_, ok := s.blacklisted[customerID]
	return ok
}
