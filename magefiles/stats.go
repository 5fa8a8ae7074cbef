//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// docFiles are the design documents counted by Stats.
var docFiles = []string{"DESIGN.md", "SPEC_FULL.md"}

// pkgStats counts lines in one Go package directory.
type pkgStats struct {
	Pkg   string `json:"pkg"`
	Prod  int    `json:"prod"`
	Test  int    `json:"test"`
	Files int    `json:"files"`
}

// Stats prints one JSON line per package with its Go line counts, then a
// totals line with design document word counts.
func Stats() error {
	byPkg := map[string]*pkgStats{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == ".git" || path == binaryDir || path == "magefiles" || strings.HasPrefix(path, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, err := countLines(path)
		if err != nil {
			return nil
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		ps, ok := byPkg[dir]
		if !ok {
			ps = &pkgStats{Pkg: dir}
			byPkg[dir] = ps
		}
		ps.Files++
		if strings.HasSuffix(path, "_test.go") {
			ps.Test += count
		} else {
			ps.Prod += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(byPkg))
	for dir := range byPkg {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	for _, dir := range dirs {
		ps := byPkg[dir]
		prod += ps.Prod
		test += ps.Test
		if err := printJSONLine(ps); err != nil {
			return err
		}
	}

	docs := map[string]int{}
	for _, name := range docFiles {
		words, err := countWords(name)
		if err != nil {
			continue
		}
		docs[name] = words
	}
	return printJSONLine(map[string]any{
		"go_loc_prod": prod,
		"go_loc_test": test,
		"go_loc":      prod + test,
		"doc_wc":      docs,
	})
}

func printJSONLine(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWords(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return len(strings.FieldsFunc(string(data), unicode.IsSpace)), nil
}
