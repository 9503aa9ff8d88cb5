//go:build windows

package writers

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// unicodeSupported checks if the current Windows console can render
// UTF-8 box-drawing characters. Returns false when output is piped
// through PowerShell (which re-encodes bytes using [Console]::OutputEncoding,
// typically the system OEM codepage) or the console output codepage isn't UTF-8.
func unicodeSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		// Programmatic writers (bytes.Buffer etc.) hand bytes straight
		// to the consumer without console re-encoding.
		return true
	}

	// Piped output goes through PowerShell's own encoding, not the
	// console codepage; box-drawing characters won't survive.
	if !term.IsTerminal(int(f.Fd())) {
		return false
	}

	// The console output codepage must actually be UTF-8 (65001).
	const cpUTF8 = 65001
	cp, err := windows.GetConsoleOutputCP()
	return err == nil && cp == cpUTF8
}
