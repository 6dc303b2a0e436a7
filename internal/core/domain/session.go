package domain

import "time"

// ConnectionState is the connectivity snapshot published by the health monitor.
type ConnectionState struct {
	Online    bool      `json:"online"`
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checked_at"`
}

// Available reports whether submissions should be attempted at all.
func (s ConnectionState) Available() bool {
	return s.Online && s.Reachable
}

// Session is the wallet connection state owned by the wallet manager.
type Session struct {
	Adapter     string    `json:"adapter"`
	Address     string    `json:"address"`
	Connected   bool      `json:"connected"`
	Balance     float64   `json:"balance"` // SUI
	BalanceMist uint64    `json:"balance_mist"`
	UpdatedAt   time.Time `json:"updated_at"`
}
