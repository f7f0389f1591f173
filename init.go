package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/phobologic/pyorder/internal/config"
)

const (
	sentinelStart = "# pyorder:start"
	sentinelEnd   = "# pyorder:end"
)

// newInitCmd implements `pyorder init`, which writes (or updates) a
// [tool.pyorder] table in a pyproject.toml file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-pyproject.toml]",
		Short: "Write a [tool.pyorder] section to pyproject.toml",
		Long: `Write the default pyorder settings to a pyproject.toml file. The section is
wrapped in sentinel comments so it can be updated in place on subsequent runs
without touching surrounding content. Creates the file if it does not exist.

path-to-pyproject.toml defaults to ./pyproject.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section, err := generateSection(config.Default())
	if err != nil {
		return err
	}

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := config.PyprojectName
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated, err := applySection(string(existing), section)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote pyorder section to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped [tool.pyorder] table for cfg.
func generateSection(cfg *config.Config) (string, error) {
	body, err := cfg.Encode()
	if err != nil {
		return "", err
	}
	return sentinelStart + "\n[tool.pyorder]\n" + strings.TrimRight(body, "\n") + "\n" + sentinelEnd, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. Content that already defines
// [tool.pyorder] outside the sentinels is refused, since appending would
// duplicate the table.
func applySection(content, section string) (string, error) {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):], nil
	}

	if content != "" {
		var doc map[string]any
		md, err := toml.Decode(content, &doc)
		if err != nil {
			return "", fmt.Errorf("parsing existing file: %w", err)
		}
		if md.IsDefined("tool", "pyorder") {
			return "", fmt.Errorf("[tool.pyorder] already exists; edit it directly or wrap it in %q/%q comments", sentinelStart, sentinelEnd)
		}
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if content == "" {
		return section + "\n", nil
	}
	return content + "\n" + section + "\n", nil
}
