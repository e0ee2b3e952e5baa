package primer

// Range is the forward and reverse primer placement window around a target
// position, in 1-based sequence coordinates.
type Range struct {
	ForwardStart int // 5' window start
	ForwardEnd   int // 5' window end
	ReverseStart int // 3' window start
	ReverseEnd   int // 3' window end
}

// 20 bases on each flank stay primer-free so the pair brackets the target.
const flankGap = 20

// RangeFor derives the primer placement windows for a target position using
// the configured extensions. Starts are clamped to 1 near the beginning of a
// sequence.
func (p Params) RangeFor(position int) Range {
	return Range{
		ForwardStart: max(1, position-p.ExtensionLeft),
		ForwardEnd:   max(1, position-flankGap),
		ReverseStart: position + flankGap,
		ReverseEnd:   position + p.ExtensionRight,
	}
}
