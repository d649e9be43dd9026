package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingOptionalGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "phpstc.yml"), true)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ValidateAllUnionMembers {
		t.Error("default must validate all union members")
	}
	if cfg.SelfCheck {
		t.Error("self-check defaults to off")
	}
}

func TestLoadMissingRequiredFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "phpstc.yml"), false); err == nil {
		t.Error("a missing required config must fail")
	}
}

func TestLoadParsesYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phpstc.yml")
	content := "ignore_file_prefixes:\n  - /vendor\nself_check: true\nvalidate_all_union_members: false\ncolor: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.IgnoreFilePrefixes) != 1 || cfg.IgnoreFilePrefixes[0] != "/vendor" {
		t.Errorf("prefixes = %v", cfg.IgnoreFilePrefixes)
	}
	if !cfg.SelfCheck {
		t.Error("self_check not parsed")
	}
	if cfg.ValidateAllUnionMembers {
		t.Error("validate_all_union_members not parsed")
	}
	if cfg.Color == nil || *cfg.Color {
		t.Error("color not parsed")
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phpstc.yml")
	if err := os.WriteFile(path, []byte("ignore_file_prefixes: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, false); err == nil {
		t.Error("malformed yaml must fail")
	}
}
