package xmlutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const appxFixture = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10" xmlns:uap="http://schemas.microsoft.com/appx/manifest/uap/windows10">
  <Identity Name="old.id" Version="1.0.0.0"/>
  <Applications>
    <Application Id="App" StartPage="www/index.html">
      <uap:VisualElements DisplayName="Old"/>
    </Application>
  </Applications>
  <Capabilities>
    <Capability Name="internetClient"/>
  </Capabilities>
</Package>`

func TestOpen_NewFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "package.appxmanifest")

	tree, err := Open(path, "Package")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	el, err := tree.EnsurePath("/Package/Properties/DisplayName")
	if err != nil {
		t.Fatalf("EnsurePath() error = %v", err)
	}
	el.SetText("Hello")
	if err := tree.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "<DisplayName>Hello</DisplayName>") {
		t.Errorf("Expected file to contain DisplayName, got: %s", content)
	}
}

func TestOpenExisting_FileNotFound(t *testing.T) {
	_, err := OpenExisting(filepath.Join(t.TempDir(), "missing.xml"))
	if err == nil {
		t.Error("OpenExisting() expected error for nonexistent file")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("not xml at all")); err == nil {
		t.Error("Parse() expected error for document without root")
	}
}

func TestFindPath_IgnoresPrefix(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ve := tree.FindPath("/Package/Applications/Application/VisualElements")
	if ve == nil {
		t.Fatal("FindPath() did not find uap:VisualElements")
	}
	if got := Of(ve); got != Prefixed("uap", "VisualElements") {
		t.Errorf("Of() = %v, want uap:VisualElements", got)
	}

	if tree.FindPath("/Other/Applications") != nil {
		t.Error("FindPath() should not match a different root")
	}
	if tree.FindPath("/Package/Missing") != nil {
		t.Error("FindPath() should return nil for missing elements")
	}
}

func TestNewElement_QualifiedName(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	caps := tree.FindPath("/Package/Capabilities")
	el := NewElement(caps, Prefixed("uap", "Capability"))
	SetAttr(el, "Name", "documentsLibrary")

	out, err := tree.String()
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	if !strings.Contains(out, `<uap:Capability Name="documentsLibrary"/>`) {
		t.Errorf("expected prefixed capability, got: %s", out)
	}
	if strings.Contains(out, "uap:uap:") {
		t.Error("prefix must not be doubled")
	}
}

func TestAttr_SetAndRemove(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	id := tree.FindPath("/Package/Identity")

	if v, ok := Attr(id, "Name"); !ok || v != "old.id" {
		t.Errorf("Attr(Name) = %q, %v", v, ok)
	}

	SetAttr(id, "Name", "new.id")
	if v, _ := Attr(id, "Name"); v != "new.id" {
		t.Errorf("Attr(Name) after set = %q", v)
	}

	RemoveAttr(id, "Version")
	if _, ok := Attr(id, "Version"); ok {
		t.Error("Version attribute should be removed")
	}
}

func TestRemoveChildren(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	caps := tree.FindPath("/Package/Capabilities")
	NewElement(caps, Prefixed("uap", "Capability"))

	if n := RemoveChildren(caps, "Capability"); n != 2 {
		t.Errorf("RemoveChildren() = %d, want 2", n)
	}
	if len(caps.ChildElements()) != 0 {
		t.Error("expected no capabilities left")
	}
}

func TestDeclaresNamespace(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !DeclaresNamespace(tree.Root(), "uap") {
		t.Error("expected xmlns:uap declaration")
	}
	if DeclaresNamespace(tree.Root(), "m3") {
		t.Error("did not expect xmlns:m3 declaration")
	}
}

func TestSetChildText_CreateAndUpdate(t *testing.T) {
	tree, err := Open(filepath.Join(t.TempDir(), "x.xml"), "Package")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	root := tree.Root()

	SetChildText(root, "Description", "first")
	SetChildText(root, "Description", "second")

	if n := len(ChildrenByLocal(root, "Description")); n != 1 {
		t.Fatalf("expected one Description, got %d", n)
	}
	if got := FirstChild(root, "Description").Text(); got != "second" {
		t.Errorf("Description = %q, want %q", got, "second")
	}
}

func TestSave_NoPath(t *testing.T) {
	tree, err := Parse([]byte(appxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := tree.Save(); err == nil {
		t.Error("Save() expected error without a path")
	}
}
