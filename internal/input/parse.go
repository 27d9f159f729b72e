package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"sortline/internal/faults"
	"sortline/internal/figure"
)

var verbs = map[string]EventType{
	"drag":      DragStart,
	"dragstart": DragStart,
	"grab":      DragStart,
	"dragend":   DragEnd,
	"release":   DragEnd,
	"dragover":  DragOver,
	"over":      DragOver,
	"drop":      Drop,
}

// ParseLine parses one text command. Blank lines and lines starting with '#'
// yield ok == false. A bare kind ("square") is shorthand for a drop.
func ParseLine(line string) (Event, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Event{}, false, nil
	}
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	evType, isVerb := verbs[verb]
	if !isVerb {
		if len(fields) != 1 {
			return Event{}, false, faults.Wrap(faults.ErrValidation, "input", "parse line", fmt.Sprintf("unknown command %q", fields[0]), nil)
		}
		return Event{Type: Drop, Kind: figure.ParseKind(fields[0])}, true, nil
	}
	if len(fields) > 2 {
		return Event{}, false, faults.Wrap(faults.ErrValidation, "input", "parse line", fmt.Sprintf("too many arguments in %q", line), nil)
	}
	ev := Event{Type: evType}
	if len(fields) == 2 {
		ev.Kind = figure.ParseKind(fields[1])
	}
	if ev.Kind == "" && evType != DragOver {
		return Event{}, false, faults.Wrap(faults.ErrValidation, "input", "parse line", fmt.Sprintf("%s requires a figure kind", verb), nil)
	}
	return ev, true, nil
}

// ReadEvents parses r line by line and passes each event to fn until EOF, an
// fn error, or ctx cancellation. Parse errors are passed to onError and
// reading continues; a nil onError stops at the first parse error.
func ReadEvents(ctx context.Context, r io.Reader, fn func(Event) error, onError func(line int, err error)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		ev, ok, err := ParseLine(scanner.Text())
		if err != nil {
			if onError == nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			onError(lineNo, err)
			continue
		}
		if !ok {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return scanner.Err()
}
