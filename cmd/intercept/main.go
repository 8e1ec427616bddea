// Command intercept runs the interception-detection core over a batch of
// ADS-B Exchange v2 snapshot files, printing one JSON line per detected
// interceptor/target rendezvous to stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"adsbxintercept/intercept"
	"adsbxintercept/internal/obslog"
	"adsbxintercept/snapshot"
)

func main() {
	var (
		glob           = flag.String("glob", "*.json", "glob pattern (relative to -dir) matching snapshot files")
		dir            = flag.String("dir", ".", "directory containing snapshot files")
		poolSize       = flag.Int("workers", 0, "decode worker pool size (0 = runtime.NumCPU())")
		skipJSONErrors = flag.Bool("skip-errors", true, "skip files that fail to decode instead of aborting")
		quiet          = flag.Bool("quiet", false, "suppress progress and diagnostic logging")
	)
	flag.Parse()

	if *quiet {
		obslog.SetOutput(nil)
	}

	paths, err := filepath.Glob(filepath.Join(*dir, *glob))
	if err != nil {
		fmt.Fprintf(os.Stderr, "intercept: bad glob: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "intercept: no files matched %s in %s\n", *glob, *dir)
		os.Exit(1)
	}

	eng := intercept.NewEngine(intercept.DefaultThresholds())
	enc := json.NewEncoder(os.Stdout)

	opts := snapshot.Options{
		SkipJSONErrors: *skipJSONErrors,
		PoolSize:       *poolSize,
		OnProgress: func(p snapshot.Progress) {
			obslog.Printf("intercept: %s\n", p.String())
		},
	}

	err = snapshot.ForEach(paths, opts, func(resp snapshot.Response) {
		for _, ev := range eng.ProcessResponse(resp) {
			if err := enc.Encode(ev.OutputRecord()); err != nil {
				obslog.Printf("intercept: failed to encode event: %v\n", err)
			}
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "intercept: %v\n", err)
		os.Exit(1)
	}

	obslog.Printf("intercept: processed %d ticks, %d aircraft, %d targets indexed, %d interceptions\n",
		len(paths), eng.NumProcessed, eng.NumIndexed, len(eng.Events()))
}
