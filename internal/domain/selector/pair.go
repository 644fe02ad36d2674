package selector

// PairStrategy sends template 0 on a short press and template 1 on a long
// press.
type PairStrategy struct{}

func (s *PairStrategy) Select(p Press, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	if p.Long && count > 1 {
		return 1, true
	}
	return 0, true
}

func (s *PairStrategy) Name() string { return string(PolicyPair) }
