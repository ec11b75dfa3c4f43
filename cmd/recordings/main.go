// Command recordings inspects and prunes the saved flight recordings.
//
//	recordings [-db path] list [-n 20]
//	recordings [-db path] show <id>
//	recordings [-db path] delete <id>
//	recordings [-db path] prune <age>   (e.g. 30d, 2w, 12h)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"flightrecorder/pkg/config"
	"flightrecorder/pkg/db"
	"flightrecorder/pkg/model"
	"flightrecorder/pkg/store"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", defaultDBPath(), "Path to the recordings database")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	d, err := db.Init(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	st := store.NewSQLiteStore(d)
	defer st.Close()

	if err := runCommand(context.Background(), os.Stdout, st, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	if p := os.Getenv("FLIGHTRECORDER_DB_PATH"); p != "" {
		return p
	}
	return config.DefaultConfig().DB.Path
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: recordings [-db path] list [-n N] | show <id> | delete <id> | prune <age>")
	flag.PrintDefaults()
}

func runCommand(ctx context.Context, w io.Writer, st store.RecordingStore, args []string) error {
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		n := fs.Int("n", 20, "Maximum number of recordings (0 = all)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return list(ctx, w, st, *n)
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("show needs a recording id")
		}
		return show(ctx, w, st, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("delete needs a recording id")
		}
		if err := st.DeleteRecording(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted %s\n", args[1])
		return nil
	case "prune":
		if len(args) < 2 {
			return fmt.Errorf("prune needs an age, e.g. 30d")
		}
		age, err := config.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid age %q: %w", args[1], err)
		}
		cutoff := time.Now().Add(-age)
		n, err := st.PruneRecordings(ctx, cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Pruned %d recordings saved before %s\n", n, humanize.Time(cutoff))
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func list(ctx context.Context, w io.Writer, st store.RecordingStore, n int) error {
	recs, err := st.ListRecordings(ctx, n)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recordings.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTRIGGER\tSAVED\tDURATION\tFRAMES\tTRACK\tMAX ALT")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s ft\n",
			r.ID, r.Trigger, humanize.Time(r.SavedAt), r.Duration().Round(time.Second),
			humanize.Comma(int64(r.FrameCount)), humanize.SIWithDigits(r.TrackLengthM, 1, "m"),
			humanize.Comma(int64(r.MaxAltitudeFt)))
	}
	return tw.Flush()
}

func show(ctx context.Context, w io.Writer, st store.RecordingStore, id string) error {
	r, err := st.GetRecording(ctx, id)
	if err != nil {
		return fmt.Errorf("recording %s: %w", id, err)
	}
	printRecording(w, r)
	return nil
}

func printRecording(w io.Writer, r *model.Recording) {
	fmt.Fprintf(w, "Recording %s (%s)\n", r.ID, r.Trigger)
	fmt.Fprintf(w, "  Started:  %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "  Duration: %s\n", r.Duration().Round(time.Second))
	fmt.Fprintf(w, "  Saved:    %s\n", humanize.Time(r.SavedAt))
	fmt.Fprintf(w, "  Frames:   %s\n", humanize.Comma(int64(r.FrameCount)))
	fmt.Fprintf(w, "  Track:    %s\n", humanize.SIWithDigits(r.TrackLengthM, 1, "m"))
	fmt.Fprintf(w, "  Max alt:  %s ft\n", humanize.Comma(int64(r.MaxAltitudeFt)))
	if r.StartCell != "" {
		fmt.Fprintf(w, "  Cells:    %s -> %s\n", r.StartCell, r.EndCell)
	}
	if len(r.Frames) > 0 {
		first, last := r.Frames[0], r.Frames[len(r.Frames)-1]
		fmt.Fprintf(w, "  From:     %.4f, %.4f\n", first.Latitude, first.Longitude)
		fmt.Fprintf(w, "  To:       %.4f, %.4f\n", last.Latitude, last.Longitude)
	}
}
