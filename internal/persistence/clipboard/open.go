package clipboard

import (
	"fmt"
	"path/filepath"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/tuning"
)

// Open builds the backend named by cfg. Disk backends are paired with an
// in-memory history so Latest stays cheap.
func Open(cfg tuning.Clipboard) (Store, *Memory, error) {
	mem := NewMemory(cfg.History)
	switch cfg.Backend {
	case "", tuning.ClipboardMemory:
		return mem, mem, nil
	case tuning.ClipboardJournal:
		return Multi{mem, NewJournal(cfg.Dir)}, mem, nil
	case tuning.ClipboardSQLite:
		x, err := OpenIndexed(filepath.Join(cfg.Dir, "clipboard.sqlite"))
		if err != nil {
			return nil, nil, fmt.Errorf("open clipboard index: %w", err)
		}
		return Multi{mem, x}, mem, nil
	default:
		return nil, nil, fmt.Errorf("unknown clipboard backend %q", cfg.Backend)
	}
}

// FindIndexed returns the SQLite backend inside s, if any.
func FindIndexed(s Store) (*Indexed, bool) {
	switch v := s.(type) {
	case *Indexed:
		return v, true
	case Multi:
		for _, inner := range v {
			if x, ok := FindIndexed(inner); ok {
				return x, true
			}
		}
	}
	return nil, false
}
