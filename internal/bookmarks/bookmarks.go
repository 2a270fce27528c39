// Package bookmarks keeps the starred and other class lists of the classes
// page in sync with star toggles that are persisted asynchronously.
package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/roster"
)

// Mutation persists the star flag of a class.
type Mutation func(ctx context.Context, id string, starred bool) error

// Change describes a move between the two lists.
type Change struct {
	ID         string
	Starred    bool // list the class is in after the change
	RolledBack bool // the move undoes a failed toggle
}

// List holds two name-sorted class lists: starred and others.
//
// Toggle moves a class immediately, then runs the mutation. Each toggle
// takes a per-class sequence number. While the latest toggle of a class
// is in flight the list shows its intent. Once it has finished, the list
// shows the last star value a mutation acknowledged, so failures of
// overlapping toggles cannot leave a value the roster never stored.
type List struct {
	mu          sync.Mutex
	starred     []model.Class
	others      []model.Class
	seq         map[string]uint64
	acked       map[string]bool // last star value stored by a mutation
	settled     map[string]bool // the latest toggle has finished
	subscribers []chan Change
	closed      bool
	logger      *slog.Logger
}

// New splits classes by their Starred flag.
func New(classes []model.Class, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	l := &List{
		seq:     make(map[string]uint64),
		acked:   make(map[string]bool),
		settled: make(map[string]bool),
		logger:  logger,
	}
	l.reset(classes)
	return l
}

// Reset replaces both lists, e.g. after the roster was reloaded.
func (l *List) Reset(classes []model.Class) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset(classes)
}

func (l *List) reset(classes []model.Class) {
	l.starred = l.starred[:0]
	l.others = l.others[:0]
	l.acked = make(map[string]bool, len(classes))
	for _, c := range classes {
		l.acked[c.ID] = c.Starred
		if c.Starred {
			l.starred = append(l.starred, c)
		} else {
			l.others = append(l.others, c)
		}
	}
	model.SortClasses(l.starred)
	model.SortClasses(l.others)
}

// Starred returns a copy of the starred classes.
func (l *List) Starred() []model.Class {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Class(nil), l.starred...)
}

// Others returns a copy of the classes that are not starred.
func (l *List) Others() []model.Class {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Class(nil), l.others...)
}

// IsStarred reports whether the class is currently in the starred list.
func (l *List) IsStarred(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return indexOf(l.starred, id) >= 0
}

// Toggle flips the star of class id. The class moves to the other list
// before mutate runs. When the latest toggle of the class has finished,
// the list is set back to the last acknowledged value if it differs. The
// mutation error is returned either way.
func (l *List) Toggle(ctx context.Context, id string, mutate Mutation) error {
	l.mu.Lock()
	starred, ok := l.move(id)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", roster.ErrUnknownClass, id)
	}
	l.seq[id]++
	mySeq := l.seq[id]
	l.settled[id] = false
	l.notify(Change{ID: id, Starred: starred})
	l.mu.Unlock()

	err := mutate(ctx, id, starred)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err == nil {
		l.acked[id] = starred
	}
	if l.seq[id] == mySeq {
		l.settled[id] = true
	}
	if !l.settled[id] {
		if err != nil {
			l.logger.Debug("toggle failed while a later one is pending", "class", id, "error", err)
		}
		return err
	}
	l.reconcile(id)
	return err
}

// reconcile moves class id back to its acknowledged list if needed.
func (l *List) reconcile(id string) {
	want := l.acked[id]
	if (indexOf(l.starred, id) >= 0) == want {
		return
	}
	if back, ok := l.move(id); ok {
		l.notify(Change{ID: id, Starred: back, RolledBack: true})
	}
}

// move shifts class id into the other list, keeping it sorted, and
// returns whether it is now starred.
func (l *List) move(id string) (bool, bool) {
	if i := indexOf(l.starred, id); i >= 0 {
		c := l.starred[i]
		c.Starred = false
		l.starred = append(l.starred[:i], l.starred[i+1:]...)
		l.others = insertSorted(l.others, c)
		return false, true
	}
	if i := indexOf(l.others, id); i >= 0 {
		c := l.others[i]
		c.Starred = true
		l.others = append(l.others[:i], l.others[i+1:]...)
		l.starred = insertSorted(l.starred, c)
		return true, true
	}
	return false, false
}

// Subscribe returns a channel that receives list changes.
func (l *List) Subscribe() <-chan Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Change, 10)
	if l.closed {
		close(ch)
		return ch
	}
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Close closes all subscriber channels.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for _, ch := range l.subscribers {
		close(ch)
	}
	l.subscribers = nil
}

func (l *List) notify(c Change) {
	for _, ch := range l.subscribers {
		select {
		case ch <- c:
		default:
		}
	}
}

func insertSorted(classes []model.Class, c model.Class) []model.Class {
	i := sort.Search(len(classes), func(i int) bool {
		return !model.ClassLess(classes[i], c)
	})
	classes = append(classes, model.Class{})
	copy(classes[i+1:], classes[i:])
	classes[i] = c
	return classes
}

func indexOf(classes []model.Class, id string) int {
	for i := range classes {
		if classes[i].ID == id {
			return i
		}
	}
	return -1
}
