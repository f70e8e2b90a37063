package store

import (
	"context"
	"sync"

	"pearl/internal/workflow"
)

// Collection names the record sets subscribers can watch.
type Collection string

const (
	CollectionAssignments Collection = "assignments"
	CollectionChapters    Collection = "chapters"
	CollectionTitles      Collection = "titles"
	CollectionUsers       Collection = "users"
)

// Snapshot is the full current state of one collection. Subscribers always
// receive complete snapshots, never deltas; aggregate state is recomputed
// from scratch on every delivery so all observers converge.
type Snapshot struct {
	Collection  Collection
	Assignments []*workflow.Assignment
	Chapters    []*workflow.Chapter
	Titles      []*workflow.Title
	Users       []*workflow.User
}

type watchHub struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[Collection]map[int]func(Snapshot)
}

// Subscribe registers a callback for a collection. The callback fires with
// the full snapshot after every committed write touching the collection.
// The returned cancel function removes the subscription.
func (s *Store) Subscribe(collection Collection, fn func(Snapshot)) func() {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()
	if s.watch.subscribers == nil {
		s.watch.subscribers = make(map[Collection]map[int]func(Snapshot))
	}
	if s.watch.subscribers[collection] == nil {
		s.watch.subscribers[collection] = make(map[int]func(Snapshot))
	}
	s.watch.nextID++
	id := s.watch.nextID
	s.watch.subscribers[collection][id] = fn

	return func() {
		s.watch.mu.Lock()
		defer s.watch.mu.Unlock()
		delete(s.watch.subscribers[collection], id)
	}
}

// notify reloads a collection and hands the snapshot to every subscriber.
// Delivery is synchronous with the committing write, so a subscriber that
// re-derives state sees its own change immediately.
func (s *Store) notify(ctx context.Context, collection Collection) {
	s.watch.mu.Lock()
	callbacks := make([]func(Snapshot), 0, len(s.watch.subscribers[collection]))
	for _, fn := range s.watch.subscribers[collection] {
		callbacks = append(callbacks, fn)
	}
	s.watch.mu.Unlock()
	if len(callbacks) == 0 {
		return
	}

	snapshot := Snapshot{Collection: collection}
	var err error
	switch collection {
	case CollectionAssignments:
		snapshot.Assignments, err = s.ListAssignments(ctx)
	case CollectionChapters:
		snapshot.Chapters, err = s.listAllChapters(ctx)
	case CollectionTitles:
		snapshot.Titles, err = s.ListTitles(ctx)
	case CollectionUsers:
		snapshot.Users, err = s.ListUsers(ctx)
	}
	if err != nil {
		return
	}
	for _, fn := range callbacks {
		fn(snapshot)
	}
}

func (s *Store) listAllChapters(ctx context.Context) ([]*workflow.Chapter, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+chapterColumns+` FROM chapters ORDER BY title_id, chapter_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*workflow.Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}
