package clipboard

import (
	"encoding/json"
	"sync"

	plog "github.com/BenjaminAmos/GooeysQuests/internal/persistence/log"
)

const journalPrefix = "clipboard"

// Journal appends entries to hourly clipboard-*.jsonl.zst files.
type Journal struct {
	mu     sync.Mutex
	w      *plog.JSONLZstdWriter
	closed bool
}

func NewJournal(dir string) *Journal {
	return &Journal{w: plog.NewJSONLZstdWriter(dir, journalPrefix)}
}

func (j *Journal) Put(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	return j.w.Write(e)
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.w.Close()
}

// ReadJournal returns every entry under dir, oldest first.
func ReadJournal(dir string) ([]Entry, error) {
	files, err := plog.Files(dir, journalPrefix)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, f := range files {
		err := plog.ReadJSONL(f, func(line []byte) error {
			var e Entry
			if err := json.Unmarshal(line, &e); err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
