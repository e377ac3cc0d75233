package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultWorkspace = "default"

func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid workspace name: %q", name)
	}
	return name, nil
}

func ListWorkspaces() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	out := []string{}
	ents, err := os.ReadDir(filepath.Join(dir, "workspaces"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range ents {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// CurrentWorkspace returns the configured workspace, or DefaultWorkspace.
func CurrentWorkspace() (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if name := strings.TrimSpace(cfg.CurrentWorkspace); name != "" {
		return name, nil
	}
	return DefaultWorkspace, nil
}

func UseWorkspace(name string) error {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.CurrentWorkspace = name
	return SaveConfig(cfg)
}

// RenameWorkspace moves a workspace directory and keeps current_workspace
// pointing at it when it was the current one.
func RenameWorkspace(oldName, newName string) error {
	oldName, err := NormalizeWorkspaceName(oldName)
	if err != nil {
		return err
	}
	newName, err = NormalizeWorkspaceName(newName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	oldDir, err := WorkspaceDir(oldName)
	if err != nil {
		return err
	}
	newDir, err := WorkspaceDir(newName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(oldDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("workspace not found: %s", oldName)
		}
		return err
	}
	if _, err := os.Stat(newDir); err == nil {
		return fmt.Errorf("workspace already exists: %s", newName)
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.CurrentWorkspace == oldName {
		cfg.CurrentWorkspace = newName
		if err := SaveConfig(cfg); err != nil {
			return err
		}
	}
	storeLog().Info("renamed workspace", "from", oldName, "to", newName)
	return nil
}
