package selector

// ClickCountStrategy sends template N-1 for an N-click burst and the last
// template for a long press.
type ClickCountStrategy struct{}

func (s *ClickCountStrategy) Select(p Press, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	if p.Long {
		return count - 1, true
	}
	if p.Clicks < 1 || p.Clicks > count {
		return 0, false
	}
	return p.Clicks - 1, true
}

func (s *ClickCountStrategy) Name() string { return string(PolicyClicks) }

// AutoStrategy uses the pair mapping for up to two templates and click
// counting beyond that.
type AutoStrategy struct {
	pair   PairStrategy
	clicks ClickCountStrategy
}

func (s *AutoStrategy) Select(p Press, count int) (int, bool) {
	if count <= 2 {
		return s.pair.Select(p, count)
	}
	return s.clicks.Select(p, count)
}

func (s *AutoStrategy) Name() string { return string(PolicyAuto) }
