package lang

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/hsmod/log"
)

// globalRegistry holds parsed arenas keyed by [sourceKey].
var globalRegistry sync.Map

// state tracks the one-time parse of a source.
type state struct {
	once  sync.Once
	src   []byte
	nodes []node
	err   error
}

// readAll drains r through an asynchronous read-ahead reader.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

// sourceKey identifies a parse by the hash of the source text and the path.
// The path is part of the key because parse errors report it.
type sourceKey struct {
	sum  uint64
	size int
	path string
}

func makeSourceKey(src []byte, path string) sourceKey {
	return sourceKey{sum: xxh3.Hash(src), size: len(src), path: path}
}

// parseCached parses src once per distinct (source, path) and returns a
// private copy of the arena.
func parseCached(
	ctx context.Context,
	src []byte,
	path string,
	logger log.Logger,
) ([]node, error) {
	key := makeSourceKey(src, path)

	value, cacheHit := globalRegistry.LoadOrStore(key, &state{src: bytes.Clone(src)})

	entry, ok := value.(*state)
	if !ok {
		return parseArena(ctx, src, path, logger)
	}

	logger.TraceContext(ctx, "cache lookup",
		slog.Uint64("source_hash", key.sum),
		slog.String("path", path),
		slog.Bool("cache_hit", cacheHit),
	)

	// Hash collision: the cached arena belongs to different text.
	if !bytes.Equal(entry.src, src) {
		logger.TraceContext(ctx, "cache collision", slog.Uint64("source_hash", key.sum))

		return parseArena(ctx, src, path, logger)
	}

	entry.once.Do(func() {
		entry.nodes, entry.err = parseArena(ctx, src, path, logger)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return cloneArena(entry.nodes), nil
}

// cloneArena deep-copies an arena so that in-place edits of one tree never
// reach another.
func cloneArena(nodes []node) []node {
	out := make([]node, len(nodes))

	for i, n := range nodes {
		out[i] = n
		out[i].children = append([]NodeID(nil), n.children...)
	}

	return out
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalRegistry.Clear()
}
