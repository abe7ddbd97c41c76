package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ClipboardMemory  = "memory"
	ClipboardJournal = "journal"
	ClipboardSQLite  = "sqlite"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	InventorySlots int   `yaml:"inventory_slots"`
	OutlineEnabled *bool `yaml:"outline_enabled"`

	Clipboard Clipboard `yaml:"clipboard"`
	WS        WS        `yaml:"ws"`

	// Digest is the sha256 of the raw file, empty for defaults.
	Digest string `yaml:"-"`
}

type Clipboard struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	History int    `yaml:"history"`
}

type WS struct {
	MaxQueue        int `yaml:"max_queue"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`

	// At most CmdMax commands per CmdWindowMS; CmdMax 0 disables the limit.
	CmdWindowMS int `yaml:"cmd_window_ms"`
	CmdMax      int `yaml:"cmd_max"`
}

func Defaults() Tuning {
	on := true
	return Tuning{
		ProtocolVersion: "1.0",
		InventorySlots:  10,
		OutlineEnabled:  &on,
		Clipboard: Clipboard{
			Backend: ClipboardMemory,
			Dir:     "./data/clipboard",
			History: 64,
		},
		WS: WS{
			MaxQueue:        16,
			ReadTimeoutSec:  60,
			WriteTimeoutSec: 5,
			CmdWindowMS:     1000,
			CmdMax:          50,
		},
	}
}

// Outline reports whether the outline preview is enabled.
func (t Tuning) Outline() bool { return t.OutlineEnabled == nil || *t.OutlineEnabled }

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.fillDefaults()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	t.Digest = hex.EncodeToString(sum[:])
	return t, nil
}

func (t *Tuning) fillDefaults() {
	d := Defaults()
	if strings.TrimSpace(t.ProtocolVersion) == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.InventorySlots <= 0 {
		t.InventorySlots = d.InventorySlots
	}
	if t.OutlineEnabled == nil {
		t.OutlineEnabled = d.OutlineEnabled
	}
	t.Clipboard.Backend = strings.ToLower(strings.TrimSpace(t.Clipboard.Backend))
	if t.Clipboard.Backend == "" {
		t.Clipboard.Backend = d.Clipboard.Backend
	}
	if strings.TrimSpace(t.Clipboard.Dir) == "" {
		t.Clipboard.Dir = d.Clipboard.Dir
	}
	if t.Clipboard.History <= 0 {
		t.Clipboard.History = d.Clipboard.History
	}
	if t.WS.MaxQueue <= 0 {
		t.WS.MaxQueue = d.WS.MaxQueue
	}
	if t.WS.ReadTimeoutSec <= 0 {
		t.WS.ReadTimeoutSec = d.WS.ReadTimeoutSec
	}
	if t.WS.WriteTimeoutSec <= 0 {
		t.WS.WriteTimeoutSec = d.WS.WriteTimeoutSec
	}
	if t.WS.CmdWindowMS <= 0 {
		t.WS.CmdWindowMS = d.WS.CmdWindowMS
	}
}

func (t Tuning) Validate() error {
	switch t.Clipboard.Backend {
	case ClipboardMemory, ClipboardJournal, ClipboardSQLite:
	default:
		return fmt.Errorf("clipboard.backend: unknown %q", t.Clipboard.Backend)
	}
	if t.InventorySlots > 256 {
		return fmt.Errorf("inventory_slots: %d exceeds 256", t.InventorySlots)
	}
	if t.WS.MaxQueue > 1024 {
		return fmt.Errorf("ws.max_queue: %d exceeds 1024", t.WS.MaxQueue)
	}
	if t.WS.CmdMax < 0 {
		return fmt.Errorf("ws.cmd_max: %d is negative", t.WS.CmdMax)
	}
	return nil
}
