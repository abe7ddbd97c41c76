package clipboard

import (
	"context"
	"sync/atomic"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/indexdb"
)

// Indexed keeps clipboard history in SQLite.
type Indexed struct {
	idx    *indexdb.SQLiteIndex
	closed atomic.Bool
}

func OpenIndexed(path string) (*Indexed, error) {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &Indexed{idx: idx}, nil
}

func (x *Indexed) Index() *indexdb.SQLiteIndex { return x.idx }

func (x *Indexed) Put(e Entry) error {
	if x.closed.Load() {
		return ErrClosed
	}
	return x.idx.WriteClipboard(indexdb.ClipboardRow{At: e.At, Session: e.Session, Payload: e.Payload})
}

// History waits for queued writes and returns up to limit entries of
// session (all sessions when empty), newest first.
func (x *Indexed) History(ctx context.Context, session string, limit int) ([]Entry, error) {
	if err := x.idx.Sync(ctx); err != nil {
		return nil, err
	}
	rows, err := x.idx.History(ctx, session, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{At: r.At, Session: r.Session, Payload: r.Payload})
	}
	return out, nil
}

func (x *Indexed) Latest(ctx context.Context, session string) (Entry, bool, error) {
	h, err := x.History(ctx, session, 1)
	if err != nil || len(h) == 0 {
		return Entry{}, false, err
	}
	return h[0], true, nil
}

func (x *Indexed) Close() error {
	x.closed.Store(true)
	return x.idx.Close()
}
