//go:build !windows

package writers

import "io"

// unicodeSupported reports whether the table writer may use box-drawing
// borders. Unix terminals and pipes pass UTF-8 through untouched, so
// this is unconditionally true outside Windows.
func unicodeSupported(_ io.Writer) bool {
	return true
}
