package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const modulePath = "newomega/server"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// enginePackages may import only the standard library and the packages
// listed against them.
var enginePackages = map[string][]string{
	modulePath + "/internal/rng":     nil,
	modulePath + "/internal/ships":   nil,
	modulePath + "/internal/modules": nil,
	modulePath + "/internal/combat": {
		modulePath + "/internal/rng",
		modulePath + "/internal/ships",
		modulePath + "/internal/modules",
	},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/rng", "./internal/ships", "./internal/modules", "./internal/combat")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	packages, err := decodePackages(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if found := violations(packages); len(found) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range found {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func decodePackages(r io.Reader) ([]packageInfo, error) {
	decoder := json.NewDecoder(r)
	var packages []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return packages, nil
			}
			return nil, err
		}
		packages = append(packages, pkg)
	}
}

func violations(packages []packageInfo) []string {
	var found []string
	for _, pkg := range packages {
		allowed, guarded := enginePackages[pkg.ImportPath]
		if !guarded {
			continue
		}
		for _, imp := range pkg.Imports {
			if isStdlib(imp) || contains(allowed, imp) {
				continue
			}
			found = append(found, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
		}
	}
	sort.Strings(found)
	return found
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".") && first != strings.Split(modulePath, "/")[0]
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
