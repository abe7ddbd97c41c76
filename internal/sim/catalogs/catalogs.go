package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
)

type Catalogs struct {
	Blocks     BlockCatalog
	Items      ItemCatalog
	Blueprints BlueprintCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID          string                `json:"id"`
	Solid       bool                  `json:"solid"`
	Orientation blueprint.Orientation `json:"orientation,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"` // "BLOCK","TOOL","MATERIAL"
	PlaceAs    string `json:"place_as,omitempty"`
	CopyRegion bool   `json:"copy_region,omitempty"`
}

// BlueprintCatalog holds saved copies keyed by file name (without .json).
type BlueprintCatalog struct {
	ByID   map[string]blueprint.Copy
	Digest string
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadBlueprints(filepath.Join(configDir, "blueprints"), &c.Blueprints); err != nil {
		return nil, err
	}
	for id, def := range c.Items.Defs {
		if def.PlaceAs != "" {
			if _, ok := c.Blocks.Defs[def.PlaceAs]; !ok {
				return nil, fmt.Errorf("items.json: %s places unknown block %s", id, def.PlaceAs)
			}
		}
	}
	return &c, nil
}

// Orientations exposes the block catalog as a transform orientation lookup.
func (b *BlockCatalog) Orientations() blueprint.Orientations {
	return func(family string) blueprint.Orientation {
		d, ok := b.Defs[family]
		if !ok {
			return ""
		}
		if d.Orientation == "" {
			return blueprint.OrientationNone
		}
		return d.Orientation
	}
}

// CopyTools lists the item ids that carry a copy region tool, sorted.
func (c *ItemCatalog) CopyTools() []string {
	var out []string
	for id, d := range c.Defs {
		if d.CopyRegion {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if strings.Contains(d.ID, ":") {
			return fmt.Errorf("blocks.json: id %q must not contain ':'", d.ID)
		}
		switch d.Orientation {
		case "", blueprint.OrientationNone, blueprint.OrientationHorizontal, blueprint.OrientationAll:
		default:
			return fmt.Errorf("blocks.json: %s: bad orientation %q", d.ID, d.Orientation)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if d.CopyRegion && d.Kind != "TOOL" {
			return fmt.Errorf("items.json: %s: copy_region requires kind TOOL", d.ID)
		}
		out.Defs[d.ID] = d
	}
	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadBlueprints(dir string, out *BlueprintCatalog) error {
	out.ByID = map[string]blueprint.Copy{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// A missing blueprints directory means no saved copies.
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var concat bytes.Buffer
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		concat.Write(b)
		concat.WriteByte('\n')

		c, err := blueprint.ParseCopy(string(b))
		if err != nil {
			return fmt.Errorf("blueprint %s: %w", filepath.Base(p), err)
		}
		out.ByID[strings.TrimSuffix(filepath.Base(p), ".json")] = c
	}
	out.Digest = sha256Hex(concat.Bytes())
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
