package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/sprite-tools-mcp/internal/detection"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
)

const desc = `Finds the bounding box of every sprite on a sprite sheet.

Sprites are groups of non-transparent pixels connected through edges or
corners. Boxes are printed one per line as "x y width height" in discovery
order, with one pixel of padding on the right and bottom unless --trim is set.`

// Version information - set by ldflags during build
var Version = "dev"

var errAborted = errors.New("sprite search aborted")

type cli struct {
	Sheet string `arg:"" type:"existingfile" help:"Sprite sheet image (PNG, GIF or JPEG)."`

	Trim      bool          `short:"t" help:"Shrink each box to its opaque pixels."`
	ColorKey  string        `short:"k" name:"color-key" placeholder:"#RRGGBB" help:"Treat this background color as transparent (use auto to guess it from the border)."`
	Tolerance float64       `default:"0" help:"Maximum CIEDE2000 distance (0-1 scale) from the color key."`
	Timeout   time.Duration `default:"0s" help:"Abort the search after this long (0 for no limit)."`
	Progress  bool          `short:"p" help:"Report progress on stderr."`
	JSON      bool          `name:"json" help:"Print the result as JSON."`

	Version kong.VersionFlag `short:"v" help:"Print version information."`
}

// findResult mirrors the sprite_find tool result.
type findResult struct {
	Count   int             `json:"count"`
	Sprites []detection.Box `json:"sprites"`
	Trimmed bool            `json:"trimmed"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("spritefind"),
		kong.Description(desc),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)

	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix("spritefind: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.FatalIfErrorf(run(ctx, &c, os.Stdout, os.Stderr))
}

// run loads the sheet, searches it and writes the result to stdout.
// Progress, when enabled, goes to stderr.
func run(ctx context.Context, c *cli, stdout, stderr io.Writer) error {
	img, err := loadSheet(c)
	if err != nil {
		return err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	job, err := detection.FindAsync(ctx, img)
	if err != nil {
		return fmt.Errorf("failed to start sprite search: %w", err)
	}

	lastPct := -1
	for ev := range job.Events() {
		if ev.Kind != detection.EventProgress || !c.Progress {
			continue
		}
		if pct := int(ev.Ratio * 100); pct != lastPct {
			lastPct = pct
			fmt.Fprintf(stderr, "\rsearching: %3d%%", pct)
		}
	}
	if c.Progress {
		fmt.Fprintln(stderr)
	}

	res := job.Wait()
	if res.Status == detection.StatusAborted {
		return errAborted
	}

	sprites := res.Bounds
	if c.Trim {
		sprites = trim(img, sprites)
	}
	return writeResult(stdout, c.JSON, &findResult{
		Count:   len(sprites),
		Sprites: sprites,
		Trimmed: c.Trim,
	})
}

func loadSheet(c *cli) (image.Image, error) {
	img, err := imaging.NewImageCache().Load(c.Sheet)
	if err != nil {
		return nil, err
	}
	if c.ColorKey == "" {
		return img, nil
	}
	return imaging.ApplyColorKey(img, c.ColorKey, c.Tolerance)
}

func trim(img image.Image, boxes []detection.Box) []detection.Box {
	rects := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		rects[i] = b.Rect()
	}
	out := make([]detection.Box, 0, len(boxes))
	for _, r := range imaging.TrimAll(img, rects) {
		out = append(out, detection.BoxFromRect(r))
	}
	return out
}

func writeResult(w io.Writer, asJSON bool, res *findResult) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, b := range res.Sprites {
		if _, err := fmt.Fprintf(w, "%d %d %d %d\n", b.X, b.Y, b.Width, b.Height); err != nil {
			return err
		}
	}
	return nil
}
