package selector

// Press describes a completed button 2 gesture.
type Press struct {
	Clicks int
	Long   bool
}

// Strategy maps a press to a command template index. ok is false when the
// press selects no template.
type Strategy interface {
	Select(p Press, count int) (index int, ok bool)
	Name() string
}
