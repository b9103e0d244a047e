// Package exitcode lists the process exit codes of noharmcheck.
package exitcode

const (
	Success         = 0
	UsageError      = 1 // bad flags, manifest or inputs
	ValidationError = 2 // batch has issues, or could not be validated
	DBConnError     = 3
	CopyError       = 4 // staging COPY failed
	StoreError      = 5 // registry write, promotion or output file failed
	PartialSuccess  = 6 // batch valid with warnings
)
