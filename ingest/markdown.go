package ingest

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/mdql/mdql/value"
)

// codeFenceRe matches fences like "```krafna" or "~~~krafna"; the language
// tag is compared case-sensitively by the caller.
var codeFenceRe = regexp.MustCompile("^(```+|~~~+)\\s*([A-Za-z0-9_+-]*)\\s*$")

// h1Re matches a top-level ATX heading: "# Title" (not "## Title").
var h1Re = regexp.MustCompile(`^#\s+(.+?)\s*#*\s*$`)

// inlineLinkRe matches Markdown inline links: [text](url).
var inlineLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// wikiLinkRe matches bare wiki links: [[target]] (no pipe alias).
var wikiLinkRe = regexp.MustCompile(`\[\[([^\]|]+)\]\]`)

// taskRe matches a task-list item: leading indentation, a "-", "*" or "+"
// bullet, a checkbox, then the item text.
var taskRe = regexp.MustCompile(`^(\s*)[-*+]\s+\[([ xX])\]\s*(.*)$`)

// frontMatterFence delimits the YAML header block.
const frontMatterFence = "---"

// parsedBody is the result of scanning a Markdown file's body (everything
// after any front-matter block).
type parsedBody struct {
	title      string
	codeBlocks []string
	links      []value.Value
	tasks      []value.Value
}

// splitFrontMatter separates a leading "---"-delimited YAML block from the
// rest of the document. Returns an empty front-matter string when none is
// present.
func splitFrontMatter(content string) (frontMatter string, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterFence {
		return "", content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	// Unterminated fence: treat the whole thing as body.
	return "", content
}

// parseFrontMatter decodes the YAML front-matter block into a Value hash.
// Missing or empty front-matter yields an empty hash rather than an error.
func parseFrontMatter(yamlText string) value.Value {
	h := value.NewHash()
	if strings.TrimSpace(yamlText) == "" {
		return h
	}
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(yamlText), &raw); err != nil || raw == nil {
		return h
	}
	return value.From(normalizeYAML(raw))
}

// normalizeYAML rewrites yaml.v2's map[interface{}]interface{} nodes into
// map[string]any so value.From can walk them uniformly.
func normalizeYAML(x any) any {
	switch t := x.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[toYAMLKey(k)] = normalizeYAML(v)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = normalizeYAML(v)
		}
		return out
	case []interface{}:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = normalizeYAML(v)
		}
		return out
	default:
		return t
	}
}

func toYAMLKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// parseBody scans the Markdown body for the first H1 title, fenced
// "krafna" code blocks, inline/wiki links, and task-list items.
func parseBody(body string) parsedBody {
	var out parsedBody
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inCode := false
	codeLang := ""
	var codeLines []string

	linkOrd := 0
	taskCounters := []int{}
	titleDone := false

	for scanner.Scan() {
		line := scanner.Text()

		if m := codeFenceRe.FindStringSubmatch(line); m != nil {
			if inCode {
				if codeLang == "krafna" {
					joined := strings.Join(codeLines, " ")
					out.codeBlocks = append(out.codeBlocks, strings.TrimSpace(joined))
				}
				inCode = false
				codeLang = ""
				codeLines = nil
			} else {
				inCode = true
				codeLang = m[2]
				codeLines = nil
			}
			continue
		}
		if inCode {
			codeLines = append(codeLines, line)
			continue
		}

		if !titleDone {
			if m := h1Re.FindStringSubmatch(line); m != nil {
				out.title = strings.TrimSpace(m[1])
				titleDone = true
				continue
			}
		}

		if m := taskRe.FindStringSubmatch(line); m != nil {
			indent := len(expandTabs(m[1]))
			depth := indent / 2
			taskCounters = bumpCounters(taskCounters, depth)
			ord := joinCounters(taskCounters)
			parent := parentOrd(taskCounters)
			rawText := strings.TrimSpace(m[3])
			linkOrd = collectLinks(&out.links, rawText, linkOrd)
			text := renderInteriorLinks(rawText)

			task := value.NewHash()
			task.Insert("text", value.NewString(text))
			task.Insert("checked", value.NewBool(m[2] == "x" || m[2] == "X"))
			task.Insert("ord", value.NewString(ord))
			task.Insert("parent", parent)
			out.tasks = append(out.tasks, task)
			continue
		}

		linkOrd = collectLinks(&out.links, line, linkOrd)
	}

	if inCode && codeLang == "krafna" {
		joined := strings.Join(codeLines, " ")
		out.codeBlocks = append(out.codeBlocks, strings.TrimSpace(joined))
	}

	return out
}

// collectLinks appends every inline and wiki link found in line to links,
// in the order they appear, returning the updated running ordinal.
func collectLinks(links *[]value.Value, line string, ord int) int {
	type found struct {
		pos             int
		text, url, kind string
	}
	var all []found
	for _, m := range inlineLinkRe.FindAllStringSubmatchIndex(line, -1) {
		all = append(all, found{m[0], line[m[2]:m[3]], line[m[4]:m[5]], "inline"})
	}
	for _, m := range wikiLinkRe.FindAllStringSubmatchIndex(line, -1) {
		all = append(all, found{m[0], line[m[2]:m[3]], line[m[2]:m[3]], "wiki"})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].pos < all[j].pos })
	for _, f := range all {
		ord++
		*links = append(*links, prepareLink(ord, f.text, f.url, f.kind))
	}
	return ord
}

// renderInteriorLinks rewrites bare wiki links "[[target]]" into inline
// "[target](target)" form; inline links are already in that shape. Used
// for a task item's rendered text, not for the Links list itself.
func renderInteriorLinks(text string) string {
	return wikiLinkRe.ReplaceAllString(text, "[$1]($1)")
}

func prepareLink(ord int, text, url, kind string) value.Value {
	l := value.NewHash()
	l.Insert("ord", value.NewInt(int64(ord)))
	l.Insert("text", value.NewString(text))
	l.Insert("url", value.NewString(url))
	l.Insert("type", value.NewString(kind))
	l.Insert("external", value.NewBool(isExternalURL(url)))
	return l
}

func isExternalURL(url string) bool {
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "//")
}

func bumpCounters(counters []int, depth int) []int {
	if depth >= len(counters) {
		grown := make([]int, depth+1)
		copy(grown, counters)
		counters = grown
	} else {
		counters = counters[:depth+1]
	}
	counters[depth]++
	for i := depth + 1; i < len(counters); i++ {
		counters[i] = 0
	}
	return counters
}

func joinCounters(counters []int) string {
	parts := make([]string, len(counters))
	for i, c := range counters {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

func parentOrd(counters []int) value.Value {
	if len(counters) <= 1 {
		return value.NewNull()
	}
	return value.NewString(joinCounters(counters[:len(counters)-1]))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "  ")
}
