package display

import (
	"github.com/atotto/clipboard"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

var _ domain.Clipboard = SystemClipboard{}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// ClipboardAvailable reports whether the OS clipboard can be used.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
