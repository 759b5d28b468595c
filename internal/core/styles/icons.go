package styles

// Nerd-font glyphs used by the console.
const (
	IconFrog   = "\U000F0E3A"
	IconCart   = "\U000F0110"
	IconGift   = "\U000F0E44"
	IconSearch = ""

	IconNotifySuccess    = ""
	IconNotifyError      = ""
	IconNotifyWarning    = ""
	IconNotifyInfo       = ""
	IconNotifyValidation = ""
)
