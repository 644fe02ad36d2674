package model

// Directory holds the room names and command URL templates loaded at boot.
// It is never modified after construction.
type Directory struct {
	rooms     []string
	templates []string
}

func NewDirectory(rooms, templates []string) *Directory {
	d := &Directory{
		rooms:     make([]string, len(rooms)),
		templates: make([]string, len(templates)),
	}
	copy(d.rooms, rooms)
	copy(d.templates, templates)
	return d
}

func (d *Directory) RoomCount() int {
	if d == nil {
		return 0
	}
	return len(d.rooms)
}

func (d *Directory) TemplateCount() int {
	if d == nil {
		return 0
	}
	return len(d.templates)
}

func (d *Directory) Room(i int) (string, bool) {
	if i < 0 || i >= d.RoomCount() {
		return "", false
	}
	return d.rooms[i], true
}

func (d *Directory) Template(i int) (string, bool) {
	if i < 0 || i >= d.TemplateCount() {
		return "", false
	}
	return d.templates[i], true
}

func (d *Directory) Rooms() []string {
	out := make([]string, d.RoomCount())
	if d != nil {
		copy(out, d.rooms)
	}
	return out
}

func (d *Directory) Templates() []string {
	out := make([]string, d.TemplateCount())
	if d != nil {
		copy(out, d.templates)
	}
	return out
}

// ClampIndex returns stored when it addresses a room and 0 otherwise.
func ClampIndex(stored, count int) int {
	if stored < 0 || stored >= count {
		return 0
	}
	return stored
}

type Credentials struct {
	SSID   string
	Secret string
}

func (c Credentials) Empty() bool {
	return c.SSID == ""
}
