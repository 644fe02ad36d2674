package directory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/ports"
	"strings"

	log "github.com/sirupsen/logrus"
)

const DefaultLimit = 64 << 10

var ErrSourceTooLarge = errors.New("directory: source exceeds size limit")

// ReadFields reads delim-separated fields until the first empty field or EOF.
// The empty field ends the list and is not returned. Fields are trimmed of
// trailing whitespace and of leading line endings. A limit <= 0 disables the
// size check.
func ReadFields(r io.Reader, delim byte, limit int) ([]string, error) {
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	br := bufio.NewReader(r)

	var fields []string
	read := 0
	for {
		raw, err := br.ReadString(delim)
		read += len(raw)
		if limit > 0 && read > limit {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, limit)
		}
		if err != nil && err != io.EOF {
			return nil, err
		}

		field := strings.TrimSuffix(raw, string(delim))
		field = strings.TrimLeft(field, "\r\n")
		field = strings.TrimRight(field, " \t\r\n")
		if field == "" {
			return fields, nil
		}
		fields = append(fields, field)

		if err == io.EOF {
			return fields, nil
		}
	}
}

// ReadCredentials reads the network identifier and secret from the first two
// lines of r.
func ReadCredentials(r io.Reader) (model.Credentials, error) {
	br := bufio.NewReader(r)
	var lines [2]string
	for i := range lines {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return model.Credentials{}, err
		}
		lines[i] = strings.TrimSpace(line)
		if err == io.EOF {
			break
		}
	}
	return model.Credentials{SSID: lines[0], Secret: lines[1]}, nil
}

type Files struct {
	Rooms       string
	Commands    string
	Credentials string
}

type Loader struct {
	source      ports.ConfigSource
	files       Files
	placeholder string
	limit       int
}

func NewLoader(source ports.ConfigSource, files Files, placeholder string, limit int) *Loader {
	return &Loader{
		source:      source,
		files:       files,
		placeholder: placeholder,
		limit:       limit,
	}
}

// Load builds the room and template tables. Missing files leave the
// corresponding table empty; an unreadable store or an oversize file is
// returned as an error.
func (l *Loader) Load(ctx context.Context) (*model.Directory, error) {
	rooms, err := l.readTable(ctx, l.files.Rooms, ',')
	if err != nil {
		return nil, err
	}
	templates, err := l.readTable(ctx, l.files.Commands, '\n')
	if err != nil {
		return nil, err
	}

	for i, tmpl := range templates {
		if !strings.Contains(tmpl, l.placeholder) {
			log.WithFields(log.Fields{
				"index":       i,
				"template":    tmpl,
				"placeholder": l.placeholder,
			}).Error("command template has no room placeholder")
		}
	}
	if len(rooms) == 0 {
		log.WithField("file", l.files.Rooms).Warn("no rooms configured")
	}

	log.WithFields(log.Fields{
		"rooms":     len(rooms),
		"templates": len(templates),
	}).Info("directory loaded")
	return model.NewDirectory(rooms, templates), nil
}

func (l *Loader) LoadCredentials(ctx context.Context) (model.Credentials, error) {
	rc, err := l.source.Open(ctx, l.files.Credentials)
	if errors.Is(err, ports.ErrNotFound) {
		log.WithField("file", l.files.Credentials).Warn("network credentials missing")
		return model.Credentials{}, nil
	}
	if err != nil {
		return model.Credentials{}, fmt.Errorf("open %s: %w", l.files.Credentials, err)
	}
	defer rc.Close()
	return ReadCredentials(rc)
}

func (l *Loader) readTable(ctx context.Context, name string, delim byte) ([]string, error) {
	rc, err := l.source.Open(ctx, name)
	if errors.Is(err, ports.ErrNotFound) {
		log.WithField("file", name).Error("configuration file missing")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	fields, err := ReadFields(rc, delim, l.limit)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return fields, nil
}
