package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const moduleName = "agentdesk"

// applicationLibraries are third-party packages use cases may import directly.
// Anything with I/O belongs behind a port instead.
var applicationLibraries = []string{
	"github.com/hashicorp/go-multierror",
}

// runtimeRoots hold process wiring; no context layer may reach into them.
var runtimeRoots = []string{"internal", "cmd"}

// layerPolicy lists what a layer may import besides the standard library.
// Sibling layers are relative to the owning service.
type layerPolicy struct {
	siblings  []string
	libraries []string
}

// Adapters and transport are unrestricted apart from the cross-service rule.
var layerPolicies = map[string]layerPolicy{
	"domain":      {siblings: []string{"domain"}},
	"application": {siblings: []string{"application", "domain", "ports"}, libraries: applicationLibraries},
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks contexts/<area>/<service>/<layer>/... sources, tests excluded.
func collectViolations(root string) []violation {
	var violations []violation
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel := filepath.ToSlash(path)
		parts := strings.Split(rel, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}
		service := strings.Join([]string{moduleName, "contexts", parts[1], parts[2]}, "/")
		violations = append(violations, checkFile(path, rel, parts[3], service)...)
		return nil
	})
	return violations
}

func checkFile(path string, rel string, layer string, service string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: rel, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		for _, rule := range importRules(layer, service, importPath) {
			violations = append(violations, violation{File: rel, Line: line, Import: importPath, Rule: rule})
		}
	}
	return violations
}

// importRules returns every rule importPath breaks when imported from layer of service.
func importRules(layer string, service string, importPath string) []string {
	var broken []string
	if within(importPath, moduleName+"/contexts") && !within(importPath, service) {
		broken = append(broken, "cross-module imports are forbidden")
	}

	policy, ok := layerPolicies[layer]
	if !ok {
		return broken
	}
	if strings.Contains(importPath, "/adapters/") {
		broken = append(broken, layer+" must not import adapters")
	}
	if isRuntimeImport(importPath) {
		broken = append(broken, layer+" must not import runtime infrastructure")
	}
	if !isStdlib(importPath) && !policy.allows(service, importPath) {
		broken = append(broken, layer+" import is outside explicit allowlist")
	}
	return broken
}

func (p layerPolicy) allows(service string, importPath string) bool {
	for _, sibling := range p.siblings {
		if within(importPath, service+"/"+sibling) {
			return true
		}
	}
	for _, library := range p.libraries {
		if within(importPath, library) {
			return true
		}
	}
	return false
}

func isRuntimeImport(importPath string) bool {
	for _, root := range runtimeRoots {
		if within(importPath, moduleName+"/"+root) {
			return true
		}
	}
	return false
}

// within reports whether path is prefix itself or a package below it.
func within(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if within(importPath, moduleName) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
