package event_bus

import "context"

// TableChangedEvent is published after any successful mutation of a user's rows.
const TableChangedEvent EventType = "table.changed"

type Table string

const (
	TableEvents  Table = "events"
	TableModules Table = "modules"
	TableNotes   Table = "notes"
)

// TableChanged carries no row data. Subscribers re-fetch what they need.
type TableChanged struct {
	Table  Table
	UserId int
}

// PublishTableChanged is a shortcut used by services after a committed mutation.
func (eb *EventBus) PublishTableChanged(ctx context.Context, table Table, userId int) error {
	if eb == nil {
		return nil
	}
	return eb.Publish(NewEvent(ctx, TableChangedEvent, TableChanged{Table: table, UserId: userId}))
}
