package styles

var (
	IconHigh    = "●"
	IconMedium  = "◐"
	IconLow     = "○"
	IconIgnored = "⊘"
	IconPass    = "✔"
	IconWarn    = "●"
	IconFail    = "✘"
)
