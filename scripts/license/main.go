// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Adds or checks the license header of the source files of this repository.
// Run using
//  go run ./scripts/license --dir . [--check]

package main

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

//go:embed license_header.txt
var licenseHeader string

var (
	dirFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "directory to start processing files from",
		Required: true,
	}
	checkFlag = cli.BoolFlag{
		Name:  "check",
		Usage: "only verify headers, do not modify files",
	}
)

// patterns maps file extensions, or exact file names if not starting with a
// dot, to the comment prefix of the header.
var patterns = map[string]string{
	".go":    "//",
	"go.mod": "//",
}

// ignored lists path fragments excluded from processing.
var ignored = []string{"/_examples/", "/build/"}

func newApp(log *zap.Logger) *cli.App {
	return &cli.App{
		Name:  "license",
		Usage: "adds or checks license headers",
		Flags: []cli.Flag{&dirFlag, &checkFlag},
		Action: func(context *cli.Context) error {
			dir := context.String(dirFlag.Name)
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("invalid target directory: %w", err)
			}
			return processTree(log, dir, context.Bool(checkFlag.Name))
		},
	}
}

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	if err := newApp(log).Run(os.Args); err != nil {
		log.Error("license headers", zap.Error(err))
		os.Exit(1)
	}
}

// processTree adds the header to every matching file below dir lacking it.
// In check mode files are not modified and all problems are reported.
func processTree(log *zap.Logger, dir string, checkOnly bool) error {
	var problems []error
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if isIgnored(path + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if isIgnored(path) {
			return nil
		}
		prefix, ok := prefixOf(path)
		if !ok {
			return nil
		}
		header := addPrefix(licenseHeader, prefix)
		if err := processFile(path, header, checkOnly); err != nil {
			if !checkOnly {
				return err
			}
			problems = append(problems, err)
		}
		if checkOnly {
			if err := checkDoubleHeader(path, prefix); err != nil {
				problems = append(problems, err)
			}
		}
		log.Debug("processed", zap.String("file", path))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return errors.Join(problems...)
}

func prefixOf(path string) (string, bool) {
	for pattern, prefix := range patterns {
		if strings.HasPrefix(pattern, ".") && strings.HasSuffix(path, pattern) {
			return prefix, true
		}
		if filepath.Base(path) == pattern {
			return prefix, true
		}
	}
	return "", false
}

func isIgnored(path string) bool {
	path = filepath.ToSlash(path)
	for _, fragment := range ignored {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// processFile checks the header of the given file and, unless checkOnly is
// set, adds a missing header. An outdated header of the same owner is
// replaced.
func processFile(path, header string, checkOnly bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(content)
	if strings.HasPrefix(text, "// Code generated") || strings.HasPrefix(text, header) {
		return nil
	}
	if checkOnly {
		return fmt.Errorf("missing or incorrect license header: %s", path)
	}

	if strings.Contains(firstLine(text), "Sonic Operations Ltd") {
		if _, rest, found := strings.Cut(text, "\n\n"); found {
			text = rest
		}
	}
	return os.WriteFile(path, []byte(header+"\n"+text), info.Mode().Perm())
}

func checkDoubleHeader(path, prefix string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")
	if !strings.Contains(lines[0], "Copyright") {
		return nil
	}
	for i, line := range lines[1:] {
		if strings.Contains(line, prefix+" Copyright") {
			return fmt.Errorf("double license header found in %s at line %d", path, i+2)
		}
	}
	return nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}

func addPrefix(license, prefix string) string {
	var res strings.Builder
	s := bufio.NewScanner(strings.NewReader(license))
	for s.Scan() {
		if line := s.Text(); line == "" {
			res.WriteString(prefix + "\n")
		} else {
			res.WriteString(prefix + " " + line + "\n")
		}
	}
	return res.String()
}
