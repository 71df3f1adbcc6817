package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func parseDoc(t *testing.T, src string) (*yaml.Node, *yaml.Node) {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	root, err := DocumentRoot(&doc)
	if err != nil {
		t.Fatalf("DocumentRoot: %v", err)
	}
	return &doc, root
}

func TestCloneNode(t *testing.T) {
	_, root := parseDoc(t, "# header\nfoo: bar\n")
	clone := CloneNode(root)
	if clone == root {
		t.Fatal("CloneNode returned same pointer")
	}
	SetMappingValue(clone, "foo", &yaml.Node{Kind: yaml.ScalarNode, Value: "baz"})
	if GetChildByKey(root, "foo").Value != "bar" {
		t.Error("mutating the clone changed the original")
	}
	if CloneNode(nil) != nil {
		t.Error("CloneNode(nil) should be nil")
	}
}

func TestDeepMerge(t *testing.T) {
	_, dst := parseDoc(t, "project:\n  name: demo\n  artifacts_dir: artifacts\ncache:\n  sinks: [stdout]\n")
	_, src := parseDoc(t, "project:\n  deployments_dir: deployments\ncache:\n  sinks: [sql]\nnetwork:\n  mirror_rps: 40\n")

	merged := DeepMerge(dst, src)
	project := GetChildByKey(merged, "project")
	if GetChildByKey(project, "name").Value != "demo" {
		t.Error("existing keys should survive")
	}
	if GetChildByKey(project, "deployments_dir").Value != "deployments" {
		t.Error("new nested keys should be added")
	}
	sinks := GetChildByKey(GetChildByKey(merged, "cache"), "sinks")
	if len(sinks.Content) != 1 || sinks.Content[0].Value != "sql" {
		t.Errorf("sequences are replaced, got %+v", sinks.Content)
	}
	if GetChildByKey(GetChildByKey(merged, "network"), "mirror_rps") == nil {
		t.Error("new top-level keys should be added")
	}

	if DeepMerge(nil, nil) != nil {
		t.Error("merging nils should give nil")
	}
	if out := DeepMerge(nil, src); out == nil || out == src {
		t.Error("nil dst should give a clone of src")
	}
}

func TestGetChildByKey(t *testing.T) {
	_, root := parseDoc(t, "a: 1\nb: 2\n")
	if GetChildByKey(root, "b").Value != "2" {
		t.Error("expected b=2")
	}
	if GetChildByKey(root, "c") != nil {
		t.Error("missing key should be nil")
	}
	if GetChildByKey(nil, "a") != nil {
		t.Error("nil node should give nil")
	}
}

func TestDocumentRoot(t *testing.T) {
	doc := &yaml.Node{Kind: yaml.DocumentNode}
	root, err := DocumentRoot(doc)
	if err != nil || root.Kind != yaml.MappingNode {
		t.Fatalf("empty document should get a mapping, got %v %v", root, err)
	}
	if _, err := DocumentRoot(&yaml.Node{Kind: yaml.ScalarNode}); err == nil {
		t.Error("scalar root should fail")
	}
	if _, err := DocumentRoot(nil); err == nil {
		t.Error("nil should fail")
	}
}

func TestLoadWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mission.yaml")
	doc, _ := parseDoc(t, "# top comment\nproject:\n  name: demo\n")
	if err := WriteYAML(path, doc); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "# top comment") || !strings.Contains(string(data), "\n  name: demo") {
		t.Errorf("comments or indentation lost:\n%s", data)
	}
	root, _ := DocumentRoot(loaded)
	if GetChildByKey(GetChildByKey(root, "project"), "name").Value != "demo" {
		t.Error("round trip lost project.name")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("a: [b"), 0o644)
	if _, err := LoadYAML(bad); err == nil {
		t.Error("invalid yaml should fail")
	}
}

func TestListYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	_ = os.WriteFile(path, []byte("# c\nversion: 0.0.2\n"), 0o644)

	var buf bytes.Buffer
	if err := ListYaml(path, &buf); err != nil {
		t.Fatalf("ListYaml: %v", err)
	}
	if !strings.Contains(buf.String(), "version: 0.0.2") || !strings.Contains(buf.String(), "# c") {
		t.Errorf("unexpected output %q", buf.String())
	}

	txt := filepath.Join(dir, "notes.txt")
	_ = os.WriteFile(txt, []byte("x"), 0o644)
	if err := ListYaml(txt, &buf); err == nil {
		t.Error("non-yaml extension should fail")
	}
	if err := ListYaml(dir, &buf); err == nil {
		t.Error("directory should fail")
	}
}

func TestWriteToPath_MappingCreation(t *testing.T) {
	doc, root := parseDoc(t, "project:\n  name: demo\n")
	if _, err := WriteToPath(root, []string{"cache", "metrics_addr"}, ":9000"); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteToPath(root, []string{"network", "mirror_rps"}, "12"); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteToPath(root, []string{"project", "telemetry_enabled"}, "true"); err != nil {
		t.Fatal(err)
	}
	out, _ := yaml.Marshal(doc)
	for _, want := range []string{`metrics_addr: ":9000"`, "mirror_rps: 12", "telemetry_enabled: true"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if _, err := WriteToPath(root, nil, "x"); err == nil {
		t.Error("empty path should fail")
	}
	if _, err := WriteToPath(root, []string{"project", "name", "deeper"}, "x"); err == nil {
		t.Error("descending into a scalar should fail")
	}
}

func TestWriteToPath_Sequences(t *testing.T) {
	_, root := parseDoc(t, "cache:\n  sinks: [stdout, sql]\ncollections:\n  - token: 0.0.1\n    name: a\n  - token: 0.0.2\n    name: b\n")

	if _, err := WriteToPath(root, []string{"collections[1]", "name"}, "bee"); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteToPath(root, []string{"collections[token=0.0.1]", "name"}, "ay"); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteToPath(root, []string{"collections", "2", "name"}, "new"); err != nil {
		t.Fatal(err)
	}
	items := GetChildByKey(root, "collections").Content
	got := []string{GetChildByKey(items[0], "name").Value, GetChildByKey(items[1], "name").Value, GetChildByKey(items[2], "name").Value}
	if strings.Join(got, ",") != "ay,bee,new" {
		t.Errorf("got %v", got)
	}

	if _, err := WriteToPath(root, []string{"collections[9]", "name"}, "x"); err == nil {
		t.Error("out of range index should fail")
	}
	if _, err := WriteToPath(root, []string{"collections[token=0.0.9]", "name"}, "x"); err == nil {
		t.Error("unmatched filter should fail")
	}
}
