package outcome

import (
	"sync"
)

// Book holds the records of one run in first-start order.
type Book struct {
	mu      sync.Mutex
	order   []Key
	records map[Key]*Record
}

func NewBook() *Book {
	return &Book{records: make(map[Key]*Record)}
}

// Open returns the record for key, creating it on first use. Retries of the
// same method share the handle, so a method never has two records.
func (b *Book) Open(key Key, description string) *Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rec, ok := b.records[key]; ok {
		return rec
	}

	if description == "" {
		description = "Test execution for " + key.Method
	}

	rec := &Record{Key: key, Description: description, Status: StatusRunning}
	b.records[key] = rec
	b.order = append(b.order, key)

	return rec
}

func (b *Book) Get(key Key) (*Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[key]

	return rec, ok
}

// Apply updates rec under the book lock so snapshots never see a half
// applied event.
func (b *Book) Apply(rec *Record, e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec.Update(e)
}

func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.order)
}

// Records returns copies of every record, in the order they were opened.
func (b *Book) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Record, 0, len(b.order))
	for _, key := range b.order {
		rec := *b.records[key]
		rec.Log = append([]LogLine(nil), rec.Log...)
		rec.Attachments = append([]Attachment(nil), rec.Attachments...)
		out = append(out, rec)
	}

	return out
}
