package ingest

import (
	"strings"

	"github.com/mdql/mdql/value"
)

// resolveLinks runs the five-rule fallback chain over every
// non-external link collected across cache, setting a "path" key when a
// local target file can be identified. paths is the full set of known
// Markdown files in this walk, used as the resolution universe.
func resolveLinks(cache map[string]*FileInfo, paths []string) {
	titles := make(map[string]string, len(paths))
	for _, p := range paths {
		if fi, ok := cache[p]; ok {
			titles[p] = fi.Title
		}
	}

	for _, p := range paths {
		fi, ok := cache[p]
		if !ok {
			continue
		}
		for i := range fi.Links {
			link := fi.Links[i]
			fields, _ := link.AsHash()
			if ext, _ := fields["external"].AsBool(); ext {
				continue
			}
			url, _ := fields["url"].AsString()
			if target := findMatchingPath(url, paths, titles); target != "" {
				fi.Links[i].Insert("path", value.NewString(target))
			}
		}
	}
}

// cleanLink strips a trailing "#anchor" or "?query" and turns "%20" into a
// literal space, as the link-resolution rules assume.
func cleanLink(link string) string {
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		link = link[:i]
	}
	return strings.ReplaceAll(link, "%20", " ")
}

// findMatchingPath applies the five-rule fallback chain in order, each
// rule scanning the full path universe and breaking ties by shortest
// path. The first rule to produce any candidates wins.
func findMatchingPath(rawLink string, paths []string, titles map[string]string) string {
	link := cleanLink(rawLink)
	if link == "" {
		return ""
	}

	// Rule 1: exact filename suffix match, with or without ".md".
	if m := shortestMatch(paths, func(p string) bool {
		return strings.HasSuffix(p, link) || strings.HasSuffix(p, link+".md")
	}); m != "" {
		return m
	}

	// Rule 2: substring match anywhere in the path.
	if m := shortestMatch(paths, func(p string) bool {
		return strings.Contains(p, link)
	}); m != "" {
		return m
	}

	cleanTitle := strings.TrimSuffix(link, ".md")

	// Rule 3: case-insensitive title match.
	if m := shortestMatch(paths, func(p string) bool {
		return strings.EqualFold(titles[p], cleanTitle)
	}); m != "" {
		return m
	}

	// Rule 4: title match after replacing "-" with space.
	dashToSpace := strings.ReplaceAll(cleanTitle, "-", " ")
	if m := shortestMatch(paths, func(p string) bool {
		return strings.EqualFold(titles[p], dashToSpace)
	}); m != "" {
		return m
	}

	// Rule 5: match ignoring dots entirely.
	noDots := strings.ReplaceAll(cleanTitle, ".", "")
	if m := shortestMatch(paths, func(p string) bool {
		return strings.EqualFold(strings.ReplaceAll(titles[p], ".", ""), noDots)
	}); m != "" {
		return m
	}

	return ""
}

func shortestMatch(paths []string, pred func(string) bool) string {
	best := ""
	for _, p := range paths {
		if !pred(p) {
			continue
		}
		if best == "" || len(p) < len(best) {
			best = p
		}
	}
	return best
}
