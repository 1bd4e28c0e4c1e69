package tui

// Color constants for the maconomy CLI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (titles, user input)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Days outside a half week, zero hours
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#7C3AED" // Titles, active borders
	ColorAccentBright = "#A78BFA" // Column headers, cursor

	// Weekend columns
	ColorWeekendBackground = "#1B1530"

	// State Colors
	ColorError   = "#EF4444" // Validation errors
	ColorSuccess = "#22C55E" // Approved lines
	ColorWarning = "#F59E0B" // Sign-in deadline closing in
)
