// Package ingest walks a directory of Markdown files and extracts, per
// file, front-matter, title, "krafna"-tagged code blocks, links, and
// task-list items — the Markdown ingestion layer described by the core
// query engine. Results are cached on disk keyed by modification time so
// repeated queries over an unchanged tree re-parse nothing.
package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mdql/mdql/value"
)

// FileInfo is the per-file extraction product: everything one Markdown
// file contributes to a query.
type FileInfo struct {
	Modified    string
	Title       string
	FrontMatter value.Value
	CodeBlocks  []string
	Links       []value.Value
	Tasks       []value.Value
}

// Walk recursively enumerates ".md" files under dir (after "~"
// expansion), following symlinks, and returns one FileInfo per file keyed
// by its display path. It reuses and updates the on-disk cache: only
// files whose modification time is strictly newer than the cached value
// (or which are cache-absent) are re-parsed.
func Walk(ctx context.Context, dir string) (map[string]*FileInfo, error) {
	expanded, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(expanded)
	if err != nil {
		return nil, err
	}

	paths, err := findMarkdownFiles(root)
	if err != nil {
		return nil, err
	}

	cache := loadCache()

	toParse := make([]string, 0, len(paths))
	mtimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			slog.Warn("ingest: stat failed, skipping file", "path", p, "error", err)
			continue
		}
		mtimes[p] = info.ModTime()
		cached, ok := cache[p]
		if !ok {
			toParse = append(toParse, p)
			continue
		}
		cachedMod, err := time.Parse(time.RFC3339Nano, cached.Modified)
		if err != nil || info.ModTime().After(cachedMod) {
			toParse = append(toParse, p)
		}
	}

	parsed, err := parseFilesParallel(ctx, toParse)
	if err != nil {
		return nil, err
	}
	for p, fi := range parsed {
		cache[p] = fi
	}

	resolveLinks(cache, paths)
	saveCache(cache)

	result := make(map[string]*FileInfo, len(paths))
	for _, p := range paths {
		if fi, ok := cache[p]; ok {
			result[p] = fi
		}
	}
	return result, nil
}

func expandHome(dir string) (string, error) {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if dir == "~" {
		return home, nil
	}
	return filepath.Join(home, dir[2:]), nil
}

// findMarkdownFiles walks root following symlinks, collecting every file
// whose extension is ".md". A per-entry I/O error is logged and the entry
// skipped rather than aborting the walk.
func findMarkdownFiles(root string) ([]string, error) {
	var out []string
	var walker func(path string, d fs.DirEntry, err error) error
	walker = func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("ingest: walk error, skipping entry", "path", path, "error", err)
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, rerr := filepath.EvalSymlinks(path)
			if rerr != nil {
				slog.Warn("ingest: unresolvable symlink, skipping", "path", path, "error", rerr)
				return nil
			}
			info, serr := os.Stat(target)
			if serr != nil {
				slog.Warn("ingest: unreadable symlink target, skipping", "path", path, "error", serr)
				return nil
			}
			if info.IsDir() {
				return filepath.WalkDir(target, walker)
			}
			path = target
			d = fs.FileInfoToDirEntry(info)
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			out = append(out, path)
		}
		return nil
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	if err := filepath.WalkDir(root, walker); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// parseFilesParallel parses each path independently and concurrently; no
// two workers share mutable state, and the per-path results are only
// assembled into a map after every worker has finished.
func parseFilesParallel(ctx context.Context, paths []string) (map[string]*FileInfo, error) {
	results := make(map[string]*FileInfo, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	type kv struct {
		path string
		info *FileInfo
	}
	out := make([]kv, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fi, err := parseFile(p)
			if err != nil {
				slog.Warn("ingest: parse failed, skipping file", "path", p, "error", err)
				return nil
			}
			out[i] = kv{path: p, info: fi}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, e := range out {
		if e.info != nil {
			results[e.path] = e.info
		}
	}
	return results, nil
}

// parseFile reads one Markdown file and builds its FileInfo: front-matter
// augmented with the synthesized "file" hash, title, code blocks, links
// (unresolved path), and tasks.
func parseFile(path string) (*FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	frontMatterText, body := splitFrontMatter(string(content))
	fm := parseFrontMatter(frontMatterText)

	fileHash, modified := buildFileHash(path)
	fm.Insert("file", fileHash)

	parsed := parseBody(body)
	for i := range parsed.links {
		parsed.links[i].Insert("file", fileHash)
	}
	for i := range parsed.tasks {
		parsed.tasks[i].Insert("file", fileHash)
	}

	return &FileInfo{
		Modified:    modified,
		Title:       parsed.title,
		FrontMatter: fm,
		CodeBlocks:  parsed.codeBlocks,
		Links:       parsed.links,
		Tasks:       parsed.tasks,
	}, nil
}

// buildFileHash synthesizes the "file" sub-hash: name, path, and the
// created/modified/accessed timestamps. All three are taken from the
// file's modification time; when the file cannot be stat'ed, all three
// are Null.
func buildFileHash(path string) (value.Value, string) {
	h := value.NewHash()
	h.Insert("name", value.NewString(filepath.Base(path)))
	h.Insert("path", value.NewString(path))

	info, err := os.Stat(path)
	modified := ""
	if err == nil {
		// Keep full sub-second precision: the cache compares this against
		// os.Stat's nanosecond mtime, and truncating here would make every
		// file look newer than its own cache entry on the next run.
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)
		modified = modTime
		h.Insert("modified", value.NewString(modTime))
		h.Insert("created", value.NewString(modTime))
		h.Insert("accessed", value.NewString(modTime))
	} else {
		h.Insert("modified", value.NewNull())
		h.Insert("created", value.NewNull())
		h.Insert("accessed", value.NewNull())
	}
	return h, modified
}
