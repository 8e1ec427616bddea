package snapshot

import (
	"bytes"
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"adsbxintercept/adsberr"
	"adsbxintercept/internal/obslog"
)

// LoadFile reads and decodes a single snapshot file. Paths ending in ".bz2"
// are treated as (possibly multi-stream, e.g. pbzip2-produced) bzip2; the
// standard library's bzip2 reader already handles concatenated streams
// transparently, so no third-party decompressor is needed. Everything else
// is read as UTF-8 JSON verbatim.
func LoadFile(path string) (Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return Response{}, fmt.Errorf("%w: open %s: %v", adsberr.ErrInputRead, path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		r = bzip2.NewReader(f)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read %s: %v", adsberr.ErrInputRead, path, err)
	}

	var resp Response
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("%w: parse %s: %v", adsberr.ErrDecode, path, err)
	}
	return resp, nil
}

// Progress is a textual progress indicator: done/total ticks, elapsed time,
// a rough ETA, and a caller-settable status message.
type Progress struct {
	Done, Total int
	Started     time.Time
	Message     string
}

// ETA returns the estimated remaining duration, linearly extrapolated from
// the elapsed time and completed count. Zero until at least one item has
// completed.
func (p Progress) ETA() time.Duration {
	if p.Done == 0 {
		return 0
	}
	elapsed := time.Since(p.Started)
	perItem := elapsed / time.Duration(p.Done)
	remaining := p.Total - p.Done
	if remaining < 0 {
		remaining = 0
	}
	return perItem * time.Duration(remaining)
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d eta=%s elapsed=%s %s",
		p.Done, p.Total, p.ETA().Round(time.Second), time.Since(p.Started).Round(time.Second), p.Message)
}

// Options configures ForEach. A zero-value Options is usable: PoolSize
// defaults to runtime.NumCPU(), OnProgress defaults to a no-op.
type Options struct {
	// SkipJSONErrors selects the policy on a per-file decode/read failure:
	// false aborts the whole run (after draining the in-flight batch),
	// true logs the failure to obslog.Printf and continues.
	SkipJSONErrors bool

	// PoolSize bounds the number of files decoded concurrently. Defaults
	// to runtime.NumCPU() when <= 0.
	PoolSize int

	// OnProgress, if set, is invoked from the serial drain loop after each
	// path (success or skipped failure) completes.
	OnProgress func(Progress)
}

// ForEach decodes every path in paths and invokes op exactly once per
// successfully-decoded path, in the order paths were given — regardless of
// which worker in the decode pool finishes first. Decoding runs on a bounded
// worker pool; op itself is always called serially from the calling
// goroutine, because op is expected to mutate shared state (the aircraft
// state store) that must not be touched concurrently.
//
// This fixes mode (a) from spec.md §4.1 (preserve input order): each path's
// decoded result is written into a result slot indexed by its position in
// paths, and the drain loop below reads slots off in order, so delivery
// order never depends on completion order.
func ForEach(paths []string, opts Options, op func(Response)) error {
	if opts.PoolSize <= 0 {
		opts.PoolSize = runtime.NumCPU()
	}

	results := make([]result, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(opts.PoolSize)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			resp, err := LoadFile(path)
			results[i] = result{path: path, resp: resp, err: err}
			return nil // per-file errors are carried in results, not returned
		})
	}
	if err := g.Wait(); err != nil {
		// Every worker above returns nil and per-file decode errors are
		// captured in results, so Wait returns nil as the code stands;
		// this branch only reports a non-nil worker error.
		return fmt.Errorf("%w: %v", adsberr.ErrParallelPipeline, err)
	}

	progress := Progress{Total: len(paths), Started: time.Now()}
	for _, res := range results {
		if res.err != nil {
			obslog.Printf("snapshot: error reading %s: %v\n", res.path, res.err)
			if !opts.SkipJSONErrors {
				return res.err
			}
		} else {
			op(res.resp)
		}
		progress.Done++
		if opts.OnProgress != nil {
			opts.OnProgress(progress)
		}
	}
	return nil
}

type result struct {
	path string
	resp Response
	err  error
}
