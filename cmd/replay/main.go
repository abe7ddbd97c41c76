package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/clipboard"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
)

type replayFlags struct {
	journalDir string
	sqlitePath string
	configDir  string
	session    string
	limit      int
	rotate     int
	undo       bool
	emit       bool
}

func main() {
	var f replayFlags
	cmd := &cobra.Command{
		Use:          "replay",
		Short:        "Print clipboard history, optionally re-rotating each copy",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "replay"})
			return run(cmd.Context(), f, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&f.journalDir, "journal", "", "journal dir containing clipboard-*.jsonl.zst")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite", "", "path to clipboard.sqlite")
	cmd.Flags().StringVar(&f.configDir, "configs", "./configs", "config directory (block orientations)")
	cmd.Flags().StringVar(&f.session, "session", "", "only show this session")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "max entries (0 = all)")
	cmd.Flags().IntVar(&f.rotate, "rotate", 0, "re-export each copy rotated by quarter turns or degrees")
	cmd.Flags().BoolVar(&f.undo, "undo", false, "apply the inverse of --rotate instead")
	cmd.Flags().BoolVar(&f.emit, "emit", false, "print the (re-exported) payload of each entry")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f replayFlags, out io.Writer, logger *log.Logger) error {
	entries, err := load(ctx, f)
	if err != nil {
		return err
	}

	var t blueprint.Transform
	if f.rotate != 0 || f.undo {
		cats, err := catalogs.Load(f.configDir)
		if err != nil {
			return fmt.Errorf("load catalogs: %w", err)
		}
		t = blueprint.Rotate(f.rotate, cats.Blocks.Orientations())
		if f.undo {
			inv, ok := blueprint.Inverse(t)
			if !ok {
				return errors.New("rotation has no inverse")
			}
			t = inv
		}
	}

	for _, e := range entries {
		c, err := blueprint.ParseCopy(e.Payload)
		if err != nil {
			logger.Warn("skip entry", "at", e.At, "session", e.Session, "err", err)
			continue
		}
		if t != nil {
			if c, err = blueprint.Retransform(c, t); err != nil {
				logger.Warn("retransform", "at", e.At, "err", err)
				continue
			}
		}
		fmt.Fprintf(out, "%s session=%s aabb=%v blocks=%d materials=%s\n",
			e.At.Format("2006-01-02T15:04:05.000Z"), e.Session, c.AABB, len(c.Blocks), materials(c))
		if f.emit {
			payload, err := c.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, payload)
		}
	}
	return nil
}

func load(ctx context.Context, f replayFlags) ([]clipboard.Entry, error) {
	switch {
	case f.sqlitePath != "":
		if _, err := os.Stat(f.sqlitePath); err != nil {
			return nil, err
		}
		x, err := clipboard.OpenIndexed(f.sqlitePath)
		if err != nil {
			return nil, err
		}
		defer x.Close()
		h, err := x.History(ctx, f.session, f.limit)
		if err != nil {
			return nil, err
		}
		// History is newest first.
		for i, j := 0, len(h)-1; i < j; i, j = i+1, j-1 {
			h[i], h[j] = h[j], h[i]
		}
		return h, nil
	case f.journalDir != "":
		all, err := clipboard.ReadJournal(filepath.Clean(f.journalDir))
		if err != nil && len(all) == 0 {
			return nil, err
		}
		var out []clipboard.Entry
		for _, e := range all {
			if f.session == "" || e.Session == f.session {
				out = append(out, e)
			}
		}
		if f.limit > 0 && len(out) > f.limit {
			out = out[len(out)-f.limit:]
		}
		return out, nil
	default:
		return nil, errors.New("need --journal or --sqlite")
	}
}

func materials(c blueprint.Copy) string {
	var parts []string
	for _, m := range blueprint.Materials(c) {
		parts = append(parts, fmt.Sprintf("%s:%d", m.Item, m.Count))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
