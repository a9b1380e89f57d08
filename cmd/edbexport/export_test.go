package main

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupCLI(t *testing.T) *Config {
	t.Helper()
	c, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	c.Store.Path = filepath.Join(t.TempDir(), "test.db")
	cfg = c
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	t.Cleanup(func() {
		cfg = nil
		logger = nil
	})
	return c
}

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, doc)
		}
	}
}

func TestSeedAndExport(t *testing.T) {
	c := setupCLI(t)
	fixture := writeFile(t, "fixture.yaml", sampleFixture)

	n, err := runSeed(context.Background(), []string{fixture})
	if err != nil {
		t.Fatalf("runSeed() error = %v", err)
	}
	if n != 3 {
		t.Errorf("seeded %d objects, want 3", n)
	}

	c.Export.Redaction.Prefixes = []string{"secret."}
	var out bytes.Buffer
	summary, err := runExport(context.Background(), c, "", &out)
	if err != nil {
		t.Fatalf("runExport() error = %v", err)
	}
	doc := out.String()
	wellFormed(t, doc)
	if summary.Objects != 2 || summary.Redacted != 1 || summary.Collections != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Bytes != int64(len(doc)) {
		t.Errorf("summary.Bytes = %d, want %d", summary.Bytes, len(doc))
	}
	for _, want := range []string{
		`<Index><Index field="Updated" asc="false"></Index><Index field="Key" asc="true"></Index></Index>`,
		`<S n="Key" v="ui.theme"></S>`,
		`<Dc n="Balance" v="-12.50"></Dc>`,
		`<Bin n="Photo" v="AQID"></Bin>`,
		`<Array n="Tags" elementType="String"><S v="a"></S><S v="b"></S></Array>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("output lacks %s", want)
		}
	}
	if strings.Contains(doc, "secret.apiKey") {
		t.Error("redacted setting leaked")
	}
}

func TestExport_fixtureMatchesStore(t *testing.T) {
	c := setupCLI(t)
	fixture := writeFile(t, "fixture.yaml", sampleFixture)
	if _, err := runSeed(context.Background(), []string{fixture}); err != nil {
		t.Fatal(err)
	}

	var fromStore, fromFixture bytes.Buffer
	s1, err := runExport(context.Background(), c, "", &fromStore)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := runExport(context.Background(), c, fixture, &fromFixture)
	if err != nil {
		t.Fatal(err)
	}
	if fromStore.String() != fromFixture.String() {
		t.Errorf("store export differs from fixture export:\n%s\n---\n%s", fromStore.String(), fromFixture.String())
	}
	if s1.Checksum != s2.Checksum {
		t.Errorf("checksums differ: %016x vs %016x", s1.Checksum, s2.Checksum)
	}
}

func TestExport_toFile(t *testing.T) {
	c := setupCLI(t)
	fixture := writeFile(t, "fixture.yaml", sampleFixture)
	c.Export.Output = filepath.Join(t.TempDir(), "out.xml")
	c.Export.Indent = true

	summary, err := runExport(context.Background(), c, fixture, nil)
	if err != nil {
		t.Fatalf("runExport() error = %v", err)
	}
	data, err := os.ReadFile(c.Export.Output)
	if err != nil {
		t.Fatal(err)
	}
	wellFormed(t, string(data))
	if summary.Bytes != int64(len(data)) {
		t.Errorf("summary.Bytes = %d, file has %d", summary.Bytes, len(data))
	}
	if !strings.Contains(string(data), "\n\t<Collection") {
		t.Errorf("output is not indented:\n%s", data)
	}
}

func TestExport_warnsWithoutRedaction(t *testing.T) {
	c := setupCLI(t)
	fixture := writeFile(t, "fixture.yaml", sampleFixture)
	var logs bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&logs, nil))

	if _, err := runExport(context.Background(), c, fixture, io.Discard); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "no redaction prefixes") {
		t.Errorf("missing redaction warning in logs:\n%s", logs.String())
	}

	logs.Reset()
	c.Export.Redaction.Prefixes = []string{"secret."}
	if _, err := runExport(context.Background(), c, fixture, io.Discard); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "no redaction prefixes") {
		t.Errorf("unexpected redaction warning:\n%s", logs.String())
	}
}

func TestExport_missingStore(t *testing.T) {
	c := setupCLI(t)
	if _, err := runExport(context.Background(), c, "", io.Discard); err == nil {
		t.Error("runExport() succeeded without a store")
	}
}
