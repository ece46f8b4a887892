package ingest

import "testing"

func TestSplitFrontMatter(t *testing.T) {
	content := "---\ntitle: Hello\ntags:\n  - a\n  - b\n---\n# Hello\nbody text\n"
	fm, body := splitFrontMatter(content)
	if fm != "title: Hello\ntags:\n  - a\n  - b" {
		t.Fatalf("got %q", fm)
	}
	if body != "# Hello\nbody text\n" {
		t.Fatalf("got %q", body)
	}
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	content := "# Hello\nno front matter here\n"
	fm, body := splitFrontMatter(content)
	if fm != "" {
		t.Fatalf("expected no front matter, got %q", fm)
	}
	if body != content {
		t.Fatalf("got %q", body)
	}
}

func TestParseFrontMatterYAML(t *testing.T) {
	v := parseFrontMatter("title: Hello\ntags:\n  - a\n  - b\ncount: 3")
	h, ok := v.AsHash()
	if !ok {
		t.Fatalf("expected hash")
	}
	if s, _ := h["title"].AsString(); s != "Hello" {
		t.Fatalf("got %#v", h["title"])
	}
	tags, ok := h["tags"].AsList()
	if !ok || len(tags) != 2 {
		t.Fatalf("got %#v", h["tags"])
	}
	if i, _ := h["count"].AsInt(); i != 3 {
		t.Fatalf("got %#v", h["count"])
	}
}

func TestParseBodyTitleFirstH1Only(t *testing.T) {
	body := "# First Title\nsome text\n# Second Title\n"
	out := parseBody(body)
	if out.title != "First Title" {
		t.Fatalf("got %q", out.title)
	}
}

func TestParseBodyCodeBlocksFilteredByLanguage(t *testing.T) {
	body := "```krafna\nSELECT a\nFROM b\n```\n```go\nfmt.Println()\n```\n"
	out := parseBody(body)
	if len(out.codeBlocks) != 1 {
		t.Fatalf("got %#v", out.codeBlocks)
	}
	if out.codeBlocks[0] != "SELECT a FROM b" {
		t.Fatalf("got %q", out.codeBlocks[0])
	}
}

func TestParseBodyCodeBlockLanguageCaseSensitive(t *testing.T) {
	body := "```Krafna\nSELECT a\n```\n"
	out := parseBody(body)
	if len(out.codeBlocks) != 0 {
		t.Fatalf("expected no blocks for differently-cased tag, got %#v", out.codeBlocks)
	}
}

func TestParseBodyLinks(t *testing.T) {
	body := "See [my note](other.md) and [[Another Note]] and [ext](https://example.com)\n"
	out := parseBody(body)
	if len(out.links) != 3 {
		t.Fatalf("got %#v", out.links)
	}
	first, _ := out.links[0].AsHash()
	if typ, _ := first["type"].AsString(); typ != "inline" {
		t.Fatalf("got %#v", first)
	}
	if ext, _ := first["external"].AsBool(); ext {
		t.Fatalf("expected non-external link")
	}
	second, _ := out.links[1].AsHash()
	if typ, _ := second["type"].AsString(); typ != "wiki" {
		t.Fatalf("got %#v", second)
	}
	third, _ := out.links[2].AsHash()
	if ext, _ := third["external"].AsBool(); !ext {
		t.Fatalf("expected external link")
	}
}

func TestParseBodyTasksNestedOrd(t *testing.T) {
	body := "- [ ] top one\n  - [x] nested one\n  - [ ] nested two\n- [ ] top two\n"
	out := parseBody(body)
	if len(out.tasks) != 4 {
		t.Fatalf("got %d tasks: %#v", len(out.tasks), out.tasks)
	}
	h0, _ := out.tasks[0].AsHash()
	if ord, _ := h0["ord"].AsString(); ord != "1" {
		t.Fatalf("got %#v", h0["ord"])
	}
	if !h0["parent"].IsNull() {
		t.Fatalf("expected top-level task to have null parent, got %#v", h0["parent"])
	}

	h1, _ := out.tasks[1].AsHash()
	if ord, _ := h1["ord"].AsString(); ord != "1.1" {
		t.Fatalf("got %#v", h1["ord"])
	}
	if parent, _ := h1["parent"].AsString(); parent != "1" {
		t.Fatalf("got %#v", h1["parent"])
	}
	if checked, _ := h1["checked"].AsBool(); !checked {
		t.Fatalf("expected nested one to be checked")
	}

	h3, _ := out.tasks[3].AsHash()
	if ord, _ := h3["ord"].AsString(); ord != "2" {
		t.Fatalf("got %#v", h3["ord"])
	}
}

func TestParseBodyTaskTextWithLink(t *testing.T) {
	body := "- [ ] check [the doc](doc.md) today\n"
	out := parseBody(body)
	h, _ := out.tasks[0].AsHash()
	if text, _ := h["text"].AsString(); text != "check [the doc](doc.md) today" {
		t.Fatalf("got %q", text)
	}
	if len(out.links) != 1 {
		t.Fatalf("expected the in-task link to also be collected, got %#v", out.links)
	}
}

func TestParseBodyTaskTextRendersWikiLinkAsInline(t *testing.T) {
	body := "- [ ] follow up on [[Another Note]]\n"
	out := parseBody(body)
	h, _ := out.tasks[0].AsHash()
	if text, _ := h["text"].AsString(); text != "follow up on [Another Note](Another Note)" {
		t.Fatalf("got %q", text)
	}
	if len(out.links) != 1 {
		t.Fatalf("expected the wiki link to still be collected in its own form, got %#v", out.links)
	}
	link, _ := out.links[0].AsHash()
	if typ, _ := link["type"].AsString(); typ != "wiki" {
		t.Fatalf("expected the collected link to stay typed as wiki, got %#v", link)
	}
}
