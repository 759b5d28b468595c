package notify

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/whimsicalfrog/frogshop/internal/core/styles"
)

// KindStyle returns the toast style for kind.
func KindStyle(kind Kind) lipgloss.Style {
	switch kind {
	case KindSuccess:
		return styles.ToastSuccessStyle
	case KindError:
		return styles.ToastErrorStyle
	case KindWarning:
		return styles.ToastWarningStyle
	case KindValidation:
		return styles.ToastValidationStyle
	default:
		return styles.ToastInfoStyle
	}
}

// KindColor returns the accent color for kind.
func KindColor(kind Kind) lipgloss.Color {
	p := styles.CurrentPalette
	switch kind {
	case KindSuccess:
		return p.Success
	case KindError:
		return p.Error
	case KindWarning, KindValidation:
		return p.Warning
	default:
		return p.Primary
	}
}
