package tui

// Palette shared by the timesheet views
const (
	ColorCardBackground = "#1B1530" // dark purple
	ColorBorder         = "#3A3F55"

	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240"

	ColorAccentMain   = "#7C3AED"
	ColorAccentBright = "#A78BFA"

	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
)
