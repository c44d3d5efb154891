package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	c := &HTTPCache{Dir: t.TempDir()}
	url := "https://example.com/article"
	if err := c.Save(context.Background(), url, "text/html", `"v1"`, "Mon, 02 Jan 2006 15:04:05 GMT", []byte("<p>hi</p>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(context.Background(), url)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.ETag != `"v1"` || meta.ContentType != "text/html" || meta.URL != url {
		t.Fatalf("unexpected meta %+v", meta)
	}
	body, err := c.LoadBody(context.Background(), url)
	if err != nil || string(body) != "<p>hi</p>" {
		t.Fatalf("unexpected body %q err=%v", body, err)
	}
	if _, err := c.LoadMeta(context.Background(), "https://example.com/other"); err == nil {
		t.Fatalf("expected miss for unknown url")
	}
}

func TestHTTPCache_Unconfigured(t *testing.T) {
	var nilCache *HTTPCache
	if _, err := nilCache.LoadBody(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for nil cache")
	}
	if err := (&HTTPCache{}).Save(context.Background(), "x", "", "", "", nil); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestLLMCache_SaveGet(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	data := []byte(`{"polarity":0.5}`)
	if err := c.Save(context.Background(), key, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok || string(got) != string(data) {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, err := c.Get(context.Background(), KeyFrom("model", "other")); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if KeyFrom("a", "b") == KeyFrom("b", "a") {
		t.Fatalf("key must depend on model and prompt separately")
	}
}

func TestStrictPerms(t *testing.T) {
	base := t.TempDir()
	llmDir := filepath.Join(base, "llm")
	lc := &LLMCache{Dir: llmDir, StrictPerms: true}
	key := KeyFrom("m", "p")
	if err := lc.Save(context.Background(), key, []byte("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(llmDir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	finfo, err := os.Stat(filepath.Join(llmDir, key+".json"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode().Perm(); got != 0o600 {
		t.Fatalf("file mode = %o, want 0600", got)
	}

	httpDir := filepath.Join(base, "http")
	hc := &HTTPCache{Dir: httpDir, StrictPerms: true}
	if err := hc.Save(context.Background(), "https://example.com", "text/html", "", "", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	body := filepath.Join(httpDir, httpKey("https://example.com")+".body")
	if finfo, err := os.Stat(body); err != nil || finfo.Mode().Perm() != 0o600 {
		t.Fatalf("body should be 0600: %v", err)
	}
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	hc := &HTTPCache{Dir: dir}
	lc := &LLMCache{Dir: dir}
	ctx := context.Background()
	if err := hc.Save(ctx, "https://old.example", "text/html", "", "", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := hc.Save(ctx, "https://new.example", "text/html", "", "", []byte("new")); err != nil {
		t.Fatal(err)
	}
	// Backdate the first entry's SavedAt.
	metaPath := filepath.Join(dir, httpKey("https://old.example")+".meta.json")
	e := HTTPEntry{URL: "https://old.example", SavedAt: time.Now().Add(-48 * time.Hour)}
	b, _ := json.Marshal(e)
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		t.Fatal(err)
	}
	oldKey := KeyFrom("m", "old")
	if err := lc.Save(ctx, oldKey, []byte("{}")); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey+".json"), past, past); err != nil {
		t.Fatal(err)
	}
	if err := lc.Save(ctx, KeyFrom("m", "new"), []byte("{}")); err != nil {
		t.Fatal(err)
	}

	removed, err := Purge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := hc.LoadBody(ctx, "https://old.example"); err == nil {
		t.Fatalf("expected old body removed")
	}
	if _, err := hc.LoadBody(ctx, "https://new.example"); err != nil {
		t.Fatalf("new body should remain: %v", err)
	}

	if n, err := Purge(filepath.Join(dir, "missing"), time.Hour); err != nil || n != 0 {
		t.Fatalf("missing dir should purge nothing, n=%d err=%v", n, err)
	}
}

func TestClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	lc := &LLMCache{Dir: dir}
	if err := lc.Save(context.Background(), "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := Clear(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(entries), err)
	}
	if err := Clear("  "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
