package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess      = "✓" // Connected, check passed
	SymbolFail         = "✗" // Failed
	SymbolPending      = "○" // Idle
	SymbolProgress     = "◐" // Partial: doctor warnings
	SymbolComplete     = "●" // Live
	SymbolReconnecting = "↻" // Reconnecting
)
