package ingest

import (
	"bytes"
	"encoding/gob"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/renameio/v2"
)

// cacheFileName is the on-disk artifact name; the format is private to
// this tool and readers must tolerate absence or corruption.
const cacheFileName = "mdql/markdown.cache"

// cacheVersion is bumped whenever the wire format changes, so a cache
// written by an older build is discarded rather than misread.
const cacheVersion = 1

type cacheEnvelope struct {
	Version int
	Entries map[string]*FileInfo
}

// cacheDirOverride lets tests point the cache at a scratch directory
// instead of the platform-specific XDG cache dir, so cache-coherence
// tests never read or write the real machine-wide cache file. Production
// code never sets it.
var cacheDirOverride string

// cachePath resolves the platform-specific cache file location; the XDG
// lookup creates parent directories as needed, the test override does not.
func cachePath() (string, error) {
	if cacheDirOverride != "" {
		return filepath.Join(cacheDirOverride, cacheFileName), nil
	}
	return xdg.CacheFile(cacheFileName)
}

// loadCache reads the on-disk cache. Any failure — missing file,
// corruption, version mismatch — is logged and treated as an empty cache,
// never fatal.
func loadCache() map[string]*FileInfo {
	path, err := cachePath()
	if err != nil {
		slog.Warn("ingest: could not resolve cache path, starting empty", "error", err)
		return map[string]*FileInfo{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("ingest: could not read cache, starting empty", "path", path, "error", err)
		}
		return map[string]*FileInfo{}
	}

	var env cacheEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		slog.Warn("ingest: could not decode cache, starting empty", "path", path, "error", err)
		return map[string]*FileInfo{}
	}
	if env.Version != cacheVersion {
		slog.Info("ingest: cache version mismatch, starting empty", "path", path, "got", env.Version, "want", cacheVersion)
		return map[string]*FileInfo{}
	}
	if env.Entries == nil {
		return map[string]*FileInfo{}
	}
	return env.Entries
}

// saveCache persists the merged cache atomically; a write failure is
// logged and otherwise ignored, the cache is reconstructible.
func saveCache(entries map[string]*FileInfo) {
	path, err := cachePath()
	if err != nil {
		slog.Warn("ingest: could not resolve cache path, skipping save", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("ingest: could not create cache dir, skipping save", "path", path, "error", err)
		return
	}

	var buf bytes.Buffer
	env := cacheEnvelope{Version: cacheVersion, Entries: entries}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		slog.Warn("ingest: could not encode cache, skipping save", "error", err)
		return
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		slog.Warn("ingest: could not write cache, skipping save", "path", path, "error", err)
	}
}
