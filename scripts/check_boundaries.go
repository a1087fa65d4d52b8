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

const moduleName = "wishpact"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// location is where a source file sits in the module tree.
type location struct {
	Root    string // contexts, contracts, internal
	Service string // wishpact/contexts/<context>/<service>, contexts only
	Layer   string // domain, ports, application, adapters, transport, or "" for module.go
	Package string // first directory under internal/, e.g. platform or shared
	Sub     string // second directory under internal/, e.g. httpserver
}

type rule struct {
	Name    string
	Applies func(loc location) bool
	Allows  func(loc location, importPath string) bool
}

var rules = []rule{
	{
		Name:    "contexts must not import other services",
		Applies: func(loc location) bool { return loc.Root == "contexts" },
		Allows: func(loc location, imp string) bool {
			return !hasPrefix(imp, moduleName+"/contexts") || hasPrefix(imp, loc.Service)
		},
	},
	{
		Name:    "domain imports only its own domain and apperrors",
		Applies: func(loc location) bool { return loc.Root == "contexts" && loc.Layer == "domain" },
		Allows: func(loc location, imp string) bool {
			return isStdlib(imp) || isAllowed(imp, loc.Service+"/domain", moduleName+"/contracts/apperrors")
		},
	},
	{
		Name:    "ports import only domain types and event contracts",
		Applies: func(loc location) bool { return loc.Root == "contexts" && loc.Layer == "ports" },
		Allows: func(loc location, imp string) bool {
			return isStdlib(imp) || isAllowed(imp, loc.Service+"/domain", moduleName+"/contracts")
		},
	},
	{
		Name:    "application imports only domain, ports and contracts",
		Applies: func(loc location) bool { return loc.Root == "contexts" && loc.Layer == "application" },
		Allows: func(loc location, imp string) bool {
			return isStdlib(imp) || isAllowed(imp,
				loc.Service+"/application",
				loc.Service+"/domain",
				loc.Service+"/ports",
				moduleName+"/contracts",
			)
		},
	},
	{
		Name:    "contexts must not import runtime wiring",
		Applies: func(loc location) bool { return loc.Root == "contexts" },
		Allows: func(loc location, imp string) bool {
			return !isAllowed(imp, moduleName+"/internal/app", moduleName+"/cmd")
		},
	},
	{
		Name:    "contracts depend on nothing else in the module",
		Applies: func(loc location) bool { return loc.Root == "contracts" },
		Allows: func(loc location, imp string) bool {
			return !strings.HasPrefix(imp, moduleName+"/") || hasPrefix(imp, moduleName+"/contracts")
		},
	},
	{
		Name:    "platform and shared packages must not import the composition root",
		Applies: func(loc location) bool { return loc.Root == "internal" && loc.Package != "app" },
		Allows: func(loc location, imp string) bool {
			return !isAllowed(imp, moduleName+"/internal/app", moduleName+"/cmd")
		},
	},
	{
		Name: "only the http server reaches into contexts from platform code",
		Applies: func(loc location) bool {
			return loc.Root == "internal" && loc.Package != "app" && loc.Sub != "httpserver"
		},
		Allows: func(loc location, imp string) bool {
			return !hasPrefix(imp, moduleName+"/contexts")
		},
	},
}

func main() {
	var violations []violation
	for _, root := range []string{"contexts", "contracts", "internal"} {
		violations = append(violations, collectViolations(root)...)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Rule < violations[j].Rule
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		normalized := filepath.ToSlash(path)
		loc, ok := locate(normalized)
		if !ok {
			return nil
		}
		violations = append(violations, checkFile(path, normalized, loc)...)
		return nil
	})
	return violations
}

func locate(path string) (location, bool) {
	parts := strings.Split(path, "/")
	switch {
	case len(parts) >= 4 && parts[0] == "contexts":
		loc := location{
			Root:    "contexts",
			Service: fmt.Sprintf("%s/contexts/%s/%s", moduleName, parts[1], parts[2]),
		}
		if len(parts) > 4 {
			loc.Layer = parts[3]
		}
		return loc, true
	case len(parts) >= 2 && parts[0] == "contracts":
		return location{Root: "contracts"}, true
	case len(parts) >= 3 && parts[0] == "internal":
		loc := location{Root: "internal", Package: parts[1]}
		if len(parts) >= 4 {
			loc.Sub = parts[2]
		}
		return loc, true
	}
	return location{}, false
}

func checkFile(path string, normalized string, loc location) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		for _, name := range evaluate(loc, importPath) {
			violations = append(violations, violation{
				File:   normalized,
				Line:   line,
				Import: importPath,
				Rule:   name,
			})
		}
	}
	return violations
}

// evaluate returns the names of the rules importPath breaks at loc.
func evaluate(loc location, importPath string) []string {
	var broken []string
	for _, r := range rules {
		if r.Applies(loc) && !r.Allows(loc, importPath) {
			broken = append(broken, r.Name)
		}
	}
	return broken
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, prefixes ...string) bool {
	for _, p := range prefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, moduleName+"/") {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
