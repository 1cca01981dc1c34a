// Package builtin provides the stock tool definitions shipped with the
// engine: sandboxed file operations rooted at a workspace directory.
package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/qhy991/vagent/tool"
)

// FileTools builds the file operation definitions rooted at root.
// Returned definitions are ready to register.
func FileTools(root string) []*tool.Definition {
	e := &fileExecutor{root: root}
	return []*tool.Definition{
		{
			Name:        "file_read",
			Description: "Read the contents of a file",
			Schema: tool.Schema{Fields: []tool.Field{
				{
					Name:        "path",
					Type:        tool.TypeString,
					Required:    true,
					Description: "Path to the file to read (relative to the workspace root)",
					Aliases:     []string{"file", "filename", "filepath"},
				},
			}},
			Handler: e.read,
		},
		{
			Name:        "file_write",
			Description: "Write content to a file (creates parent directories if needed)",
			Schema: tool.Schema{Fields: []tool.Field{
				{
					Name:        "path",
					Type:        tool.TypeString,
					Required:    true,
					Description: "Path to the file to write (relative to the workspace root)",
					Aliases:     []string{"file", "filename", "filepath"},
				},
				{
					Name:        "content",
					Type:        tool.TypeString,
					Required:    true,
					Description: "Content to write to the file",
					Aliases:     []string{"text", "data", "body"},
				},
			}},
			Handler: e.write,
		},
		{
			Name:        "file_list",
			Description: "List files under a directory, optionally filtered by a glob pattern",
			Schema: tool.Schema{Fields: []tool.Field{
				{
					Name:        "path",
					Type:        tool.TypeString,
					Required:    true,
					Description: "Directory to list (relative to the workspace root)",
					Aliases:     []string{"dir", "directory"},
					Default:     ".",
				},
				{
					Name:        "pattern",
					Type:        tool.TypeString,
					Description: "Glob pattern, ** matches across directories (e.g., '**/*.v')",
					Aliases:     []string{"glob", "filter"},
				},
			}},
			Handler: e.list,
		},
	}
}

// fileExecutor implements file operations confined to a workspace root.
type fileExecutor struct {
	root string
}

func (e *fileExecutor) read(_ context.Context, params map[string]any) (any, error) {
	path, _ := params["path"].(string)

	fullPath, err := e.resolvePath(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return string(content), nil
}

func (e *fileExecutor) write(_ context.Context, params map[string]any) (any, error) {
	path, _ := params["path"].(string)
	content, _ := params["content"].(string)

	fullPath, err := e.resolvePath(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return fmt.Sprintf("wrote %d bytes to %s", len(content), path), nil
}

func (e *fileExecutor) list(_ context.Context, params map[string]any) (any, error) {
	path, _ := params["path"].(string)
	pattern, _ := params["pattern"].(string)

	fullPath, err := e.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", path)
		}
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}

	if pattern != "" {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
		matches, err := doublestar.Glob(os.DirFS(fullPath), pattern)
		if err != nil {
			return nil, fmt.Errorf("glob: %w", err)
		}
		return matches, nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		files = append(files, name)
	}
	return files, nil
}

// resolvePath validates and resolves a path, ensuring it stays within the
// workspace root.
func (e *fileExecutor) resolvePath(path string) (string, error) {
	var fullPath string
	if filepath.IsAbs(path) {
		fullPath = filepath.Clean(path)
	} else {
		fullPath = filepath.Clean(filepath.Join(e.root, path))
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	absRoot, err := filepath.Abs(e.root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}

	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("access denied: path is outside the workspace root")
	}

	return absPath, nil
}

// Register adds the file tools to a registry, honoring an optional
// allowlist of tool names.
func Register(registry *tool.Registry, root string, allowlist []string) {
	allowed := func(name string) bool {
		if len(allowlist) == 0 {
			return true
		}
		for _, a := range allowlist {
			if a == name {
				return true
			}
		}
		return false
	}

	for _, def := range FileTools(root) {
		if allowed(def.Name) {
			registry.Register(def)
		}
	}
}
