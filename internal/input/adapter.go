package input

import (
	"context"
	"fmt"
	"log/slog"

	"sortline/internal/display"
	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/logging"
	"sortline/internal/queue"
	"sortline/internal/timeline"
)

// EventType names a drag-and-drop event.
type EventType string

const (
	DragStart EventType = "dragstart"
	DragEnd   EventType = "dragend"
	DragOver  EventType = "dragover"
	Drop      EventType = "drop"
)

// Event is one input event. Kind is the opaque drag identifier.
type Event struct {
	Type EventType
	Kind figure.Kind
}

func (e Event) String() string {
	if e.Kind == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %s", e.Type, e.Kind)
}

// Result reports the effect of an event.
type Result struct {
	AllowDrop bool
	Item      *queue.Item
}

// Dropper accepts dropped figures.
type Dropper interface {
	Drop(ctx context.Context, handle figure.Handle, kind figure.Kind) (*queue.Item, error)
}

// Adapter routes input events to the catalog and the workflow.
type Adapter struct {
	catalog *figure.Catalog
	dropper Dropper
	emit    display.Emitter
	logger  *slog.Logger
}

// NewAdapter constructs an adapter. clock may be nil.
func NewAdapter(catalog *figure.Catalog, dropper Dropper, sink display.Sink, clock timeline.Clock, logger *slog.Logger) *Adapter {
	emit := display.Emitter{Sink: sink}
	if clock != nil {
		emit.Now = clock.Now
	}
	return &Adapter{
		catalog: catalog,
		dropper: dropper,
		emit:    emit,
		logger:  logging.NewComponentLogger(logger, "input"),
	}
}

// Handle applies ev. Drops must be handled on the scheduler goroutine.
func (a *Adapter) Handle(ctx context.Context, ev Event) (Result, error) {
	switch ev.Type {
	case DragStart:
		a.catalog.SetGrabbing(ev.Kind, true)
		a.emit.Emit(display.Event{Type: display.DragMarker, Kind: ev.Kind, On: true})
		return Result{}, nil
	case DragEnd:
		a.catalog.SetGrabbing(ev.Kind, false)
		a.emit.Emit(display.Event{Type: display.DragMarker, Kind: ev.Kind, On: false})
		return Result{}, nil
	case DragOver:
		return Result{AllowDrop: true}, nil
	case Drop:
		return a.drop(ctx, ev.Kind)
	default:
		return Result{}, faults.Wrap(faults.ErrValidation, "input", "handle event", fmt.Sprintf("unsupported event %q", ev.Type), nil)
	}
}

func (a *Adapter) drop(ctx context.Context, kind figure.Kind) (Result, error) {
	handle, err := a.catalog.Clone(kind)
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrValidation, "input", "clone figure", "drop carried no figure kind", err)
	}
	if a.dropper == nil {
		return Result{}, faults.Wrap(faults.ErrConfiguration, "input", "drop figure", "no workflow attached", nil)
	}
	item, err := a.dropper.Drop(ctx, handle, kind)
	if err != nil {
		return Result{}, fmt.Errorf("drop %s: %w", kind, err)
	}
	a.logger.Debug("drop forwarded", logging.String(logging.FieldKind, kind.String()), logging.Int64(logging.FieldItemID, item.ID))
	return Result{AllowDrop: true, Item: item}, nil
}
