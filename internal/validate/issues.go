package validate

// issueBuffer keeps the first max issues. Adding past the limit marks the
// buffer as overflowed; the caller stops scanning once add returns false.
type issueBuffer struct {
	max      int
	items    []string
	overflow bool
}

func (b *issueBuffer) add(msg string) bool {
	if b.overflow {
		return false
	}
	if len(b.items) >= b.max {
		b.overflow = true
		return false
	}
	b.items = append(b.items, msg)
	return true
}

// result returns the kept issues, followed by the overflow marker if any
// issue was dropped.
func (b *issueBuffer) result() []string {
	out := make([]string, len(b.items), len(b.items)+1)
	copy(out, b.items)
	if b.overflow {
		out = append(out, TooManyIssues())
	}
	return out
}
