package security

import "context"

// EventRepository stores events newest first and never holds more than its
// capacity.
//
//go:generate mockery --name=EventRepository --dir=. --output=./mocks --filename=event_repository_mock.go --case=underscore --with-expecter
type EventRepository interface {
	Append(ctx context.Context, event *Event) error
	// List returns every stored event, newest first.
	List(ctx context.Context) ([]*Event, error)
}

// Pager is implemented by repositories that can filter and paginate without
// loading the whole log.
type Pager interface {
	Page(ctx context.Context, filter Filter) (*Page, error)
}

//go:generate mockery --name=BlockRepository --dir=. --output=./mocks --filename=block_repository_mock.go --case=underscore --with-expecter
type BlockRepository interface {
	Add(ctx context.Context, entry BlockEntry) error
	Remove(ctx context.Context, ip string) (bool, error)
	Contains(ctx context.Context, ip string) (bool, error)
	List(ctx context.Context) ([]BlockEntry, error)
}

// EventSink receives every appended event after it has been stored.
type EventSink interface {
	Name() string
	Handle(ctx context.Context, event *Event) error
	Close()
}
