package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/BenjaminAmos/GooeysQuests/internal/protocol"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/events"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/entities"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
)

type recordingClipboard struct{ got []string }

func (c *recordingClipboard) SetContents(text string) { c.got = append(c.got, text) }

func loadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	c, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return c
}

func newRuntime(t *testing.T, outline bool) (*Runtime, *recordingClipboard) {
	t.Helper()
	n := 0
	clip := &recordingClipboard{}
	r, err := New(Config{
		Catalogs:       loadCatalogs(t),
		InventorySlots: 4,
		OutlineEnabled: outline,
		Clipboard:      clip,
		EntityOptions: []entities.Option{entities.WithIDs(func() model.EntityID {
			n++
			return model.EntityID(fmt.Sprintf("E%d", n))
		})},
	})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	return r, clip
}

func vec(x, y, z int) model.Vec3i { return model.Vec3i{X: x, Y: y, Z: z} }

func codeOf(err error) string {
	var ce *protocol.CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func TestRuntime_OutlineScenario(t *testing.T) {
	r, _ := newRuntime(t, true)

	_, slot, err := r.GiveItem("COPY_REGION_TOOL")
	if err != nil {
		t.Fatalf("give: %v", err)
	}
	if err := r.SelectSlot(slot); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, ok := r.Outline(); ok {
		t.Fatalf("unarmed tool must not show an outline")
	}

	origin := vec(5, 5, 5)
	if err := r.SetTool(vec(0, 0, 0), vec(1, 1, 1), &origin); err != nil {
		t.Fatalf("arm: %v", err)
	}
	got, ok := r.Outline()
	if want := (model.Region{Min: vec(5, 5, 5), Max: vec(6, 6, 6)}); !ok || !got.Equal(want) {
		t.Fatalf("outline=%v ok=%v want %v", got, ok, want)
	}
	if n := len(r.Entities().WithComponent(model.ComponentRegionOutline)); n != 1 {
		t.Fatalf("outline entities=%d", n)
	}

	if err := r.SelectSlot(slot + 1); err != nil {
		t.Fatalf("select empty: %v", err)
	}
	if _, ok := r.Outline(); ok {
		t.Fatalf("empty slot must hide the outline")
	}
	if n := len(r.Entities().WithComponent(model.ComponentRegionOutline)); n != 0 {
		t.Fatalf("outline entities=%d after hide", n)
	}
}

func TestRuntime_DetachAndDropHideOutline(t *testing.T) {
	r, _ := newRuntime(t, true)
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(0, 0, 0)
	_ = r.SetTool(vec(0, 0, 0), vec(2, 0, 0), &o)
	if _, ok := r.Outline(); !ok {
		t.Fatalf("expected outline")
	}

	if err := r.ClearTool(); err != nil {
		t.Fatalf("clear tool: %v", err)
	}
	if _, ok := r.Outline(); ok {
		t.Fatalf("detached descriptor must hide the outline")
	}
	if got := r.Bus().Published(events.KindToolDetached); got != 1 {
		t.Fatalf("TOOL_DETACHED published %d times", got)
	}

	// The catalog still marks the item as a copy tool, so it can be re-armed.
	if err := r.SetTool(vec(0, 0, 0), vec(2, 0, 0), &o); err != nil {
		t.Fatalf("re-arm: %v", err)
	}
	if _, ok := r.Outline(); !ok {
		t.Fatalf("re-attached descriptor must show the outline")
	}
	if got := r.Bus().Published(events.KindToolAttached); got != 2 {
		t.Fatalf("TOOL_ATTACHED published %d times", got)
	}
}

func TestRuntime_DropSlotHidesOutline(t *testing.T) {
	r, _ := newRuntime(t, true)
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(1, 2, 3)
	_ = r.SetTool(vec(0, 0, 0), vec(0, 0, 0), &o)
	if reg, ok := r.Outline(); !ok || reg.Volume() != 1 {
		t.Fatalf("single block outline=%v ok=%v", reg, ok)
	}
	if err := r.DropSlot(slot); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok := r.Outline(); ok {
		t.Fatalf("dropped tool must hide the outline")
	}
}

func TestRuntime_OutlineDisabled(t *testing.T) {
	r, _ := newRuntime(t, false)
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(0, 0, 0)
	_ = r.SetTool(vec(0, 0, 0), vec(1, 0, 0), &o)
	if _, ok := r.Outline(); ok {
		t.Fatalf("outline must stay hidden when disabled")
	}
	if reg, ok := r.ActiveRegion(); !ok || reg.Volume() != 2 {
		t.Fatalf("active region=%v ok=%v", reg, ok)
	}
}

func TestRuntime_CommandErrors(t *testing.T) {
	r, _ := newRuntime(t, true)
	if _, _, err := r.GiveItem("DIAMOND"); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("unknown item err=%v", err)
	}
	if err := r.SelectSlot(9); codeOf(err) != protocol.ErrInvalidTarget {
		t.Fatalf("bad slot err=%v", err)
	}
	if err := r.SetTool(vec(0, 0, 0), vec(1, 1, 1), nil); codeOf(err) != protocol.ErrInvalidTarget {
		t.Fatalf("no selection err=%v", err)
	}
	_, slot, _ := r.GiveItem("PICKAXE")
	_ = r.SelectSlot(slot)
	if err := r.SetTool(vec(0, 0, 0), vec(1, 1, 1), nil); codeOf(err) != protocol.ErrInvalidTarget {
		t.Fatalf("non-tool err=%v", err)
	}
	if _, err := r.Copy(0, ""); codeOf(err) != protocol.ErrInvalidTarget {
		t.Fatalf("copy without tool err=%v", err)
	}
	if err := r.SetBlock(vec(0, 0, 0), "UNOBTAINIUM"); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("unknown block err=%v", err)
	}
	for i := 0; i < 3; i++ {
		_, _, _ = r.GiveItem("STONE")
	}
	if _, _, err := r.GiveItem("STONE"); codeOf(err) != protocol.ErrNoResource {
		t.Fatalf("full inventory err=%v", err)
	}
}

func TestRuntime_CopyRelaysToClipboard(t *testing.T) {
	r, clip := newRuntime(t, true)
	if err := r.SetBlock(vec(10, 0, 10), "STONE"); err != nil {
		t.Fatalf("set block: %v", err)
	}
	if err := r.SetBlock(vec(11, 0, 10), "CHEST:FRONT"); err != nil {
		t.Fatalf("set block: %v", err)
	}
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(10, 0, 10)
	_ = r.SetTool(vec(0, 0, 0), vec(1, 1, 0), &o)

	if _, err := r.Copy(0, ""); err != nil {
		t.Fatalf("copy: %v", err)
	}
	payload, err := r.Copy(1, "")
	if err != nil {
		t.Fatalf("copy rotated: %v", err)
	}
	if len(clip.got) != 2 || clip.got[1] != payload {
		t.Fatalf("clipboard=%d entries", len(clip.got))
	}
	c, err := blueprint.ParseCopy(clip.got[0])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Blocks) != 2 || c.Blocks[1].Block != "CHEST:FRONT" {
		t.Fatalf("blocks=%+v", c.Blocks)
	}
	rot, _ := blueprint.ParseCopy(payload)
	if rot.Blocks[0].Block == c.Blocks[0].Block && rot.Blocks[1].Block == c.Blocks[1].Block &&
		rot.Blocks[1].Pos == c.Blocks[1].Pos {
		t.Fatalf("rotated copy should differ from the plain one")
	}
	if _, err := r.Copy(0, "Y"); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("bad mirror err=%v", err)
	}
}

func TestRuntime_PasteCatalogBlueprint(t *testing.T) {
	r, _ := newRuntime(t, true)
	res, err := r.Paste(vec(10, 0, 10), 1, "chest_nook", "")
	if err != nil || !res.Placed || res.Written == 0 || len(res.Materials) == 0 {
		t.Fatalf("paste=%+v err=%v", res, err)
	}
	if got := r.World().GetBlock(vec(10, 0, 10)); got != model.Unoriented("PLANK") {
		t.Fatalf("anchor block=%s", got)
	}
	if got := r.World().GetBlock(vec(10, 0, 9)); got != model.Facing("CHEST", model.SideLeft) {
		t.Fatalf("rotated chest=%s", got)
	}
	if _, err := r.Paste(vec(0, 0, 0), 0, "missing", ""); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("unknown blueprint err=%v", err)
	}
	if _, err := r.Paste(vec(0, 0, 0), 0, "", `{"type":"OTHER"}`); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("bad document err=%v", err)
	}
}

func TestRuntime_CopyThenPasteRoundTrip(t *testing.T) {
	r, _ := newRuntime(t, true)
	_, _ = r.Fill(vec(0, 0, 0), vec(2, 0, 1), "PLANK")
	_ = r.SetBlock(vec(2, 1, 1), "STAIRS:BACK")
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(0, 0, 0)
	_ = r.SetTool(vec(0, 0, 0), vec(2, 1, 1), &o)
	payload, err := r.Copy(0, "")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	for _, rot := range []int{0, 1, 2, 3} {
		anchor := vec(50*rot, 0, 0)
		res, err := r.Paste(anchor, rot, "", payload)
		if err != nil || !res.Placed {
			t.Fatalf("rot %d paste=%+v err=%v", rot, res, err)
		}
	}
}

func TestRuntime_PasteCountsOnlyMissingBlocks(t *testing.T) {
	r, _ := newRuntime(t, true)
	_, _ = r.Fill(vec(0, 0, 0), vec(2, 0, 0), "PLANK")
	_ = r.SetBlock(vec(0, 1, 0), "STONE")
	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(0, 0, 0)
	_ = r.SetTool(vec(0, 0, 0), vec(2, 1, 0), &o)
	payload, err := r.Copy(0, "")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	anchor := vec(20, 0, 0)
	_ = r.SetBlock(vec(21, 0, 0), "PLANK")
	res, err := r.Paste(anchor, 0, "", payload)
	if err != nil || !res.Placed || res.Written != 3 {
		t.Fatalf("paste=%+v err=%v", res, err)
	}
	want := []blueprint.ItemCount{{Item: "PLANK", Count: 2}, {Item: "STONE", Count: 1}}
	if len(res.Materials) != len(want) || res.Materials[0] != want[0] || res.Materials[1] != want[1] {
		t.Fatalf("materials=%v want %v", res.Materials, want)
	}

	res, err = r.Paste(anchor, 0, "", payload)
	if err != nil || !res.Placed || res.Written != 0 || len(res.Materials) != 0 {
		t.Fatalf("second paste=%+v err=%v", res, err)
	}
}

func TestRuntime_RejectsOversizedRegions(t *testing.T) {
	r, _ := newRuntime(t, true)
	if _, err := r.Fill(vec(0, 0, 0), vec(1<<62, 3, 0), "STONE"); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("wrapping fill err=%v", err)
	}
	if n := len(r.World().LoadedChunkKeys()); n != 0 {
		t.Fatalf("rejected fill allocated %d chunks", n)
	}

	_, slot, _ := r.GiveItem("COPY_REGION_TOOL")
	_ = r.SelectSlot(slot)
	o := vec(0, 0, 0)
	if err := r.SetTool(vec(0, 0, 0), vec(1<<62, 3, 0), &o); err != nil {
		t.Fatalf("set tool: %v", err)
	}
	if _, err := r.Copy(0, ""); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("wrapping copy err=%v", err)
	}

	far := vec(math.MaxInt-1, 0, 0)
	if err := r.SetTool(vec(0, 0, 0), vec(5, 5, 5), &far); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("overflowing origin err=%v", err)
	}
	if _, err := r.Paste(far, 0, "chest_nook", ""); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("overflowing paste err=%v", err)
	}
}

func TestRuntime_FollowAction(t *testing.T) {
	r, _ := newRuntime(t, true)
	a, err := r.Follow([]byte(`{"type":"FollowAction","ignored":true}`))
	if err != nil || a.ActionType() != protocol.ActionFollow {
		t.Fatalf("follow=%v err=%v", a, err)
	}
	c, ok := r.Companion()
	if !ok || c.Leader != r.Actor() || c.Action != protocol.ActionFollow {
		t.Fatalf("companion=%+v ok=%v", c, ok)
	}
	before := r.Entities().Count()
	if _, err := r.Follow([]byte(`{"type":"FollowAction"}`)); err != nil {
		t.Fatalf("follow again: %v", err)
	}
	if r.Entities().Count() != before {
		t.Fatalf("companion must be reused")
	}
	if _, err := r.Follow([]byte(`{"type":"Dance"}`)); codeOf(err) != protocol.ErrBadRequest {
		t.Fatalf("unknown action err=%v", err)
	}
}

func TestRuntime_RunAndDo(t *testing.T) {
	r, _ := newRuntime(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	var slot int
	err := r.Do(ctx, func(r *Runtime) error {
		var err error
		_, slot, err = r.GiveItem("COPY_REGION_TOOL")
		if err != nil {
			return err
		}
		if err := r.SelectSlot(slot); err != nil {
			return err
		}
		o := vec(5, 5, 5)
		return r.SetTool(vec(0, 0, 0), vec(1, 1, 1), &o)
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	var shown bool
	_ = r.Do(ctx, func(r *Runtime) error {
		_, shown = r.Outline()
		return nil
	})
	if !shown {
		t.Fatalf("outline should be shown")
	}

	r.Stop()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := r.Do(ctx, func(*Runtime) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("do after stop: %v", err)
	}
}
