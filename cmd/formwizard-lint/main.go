package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/model"
)

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [definition files...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(out, "\nValidate questionnaire definition files (JSON or YAML).\n")
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range paths {
		problems, err := lintFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		if len(problems) == 0 {
			fmt.Printf("%s: ok\n", path)
			continue
		}
		failed = true
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, p)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// lintFile decodes a definition (JSON first, YAML fallback) and reports every
// structural problem rather than stopping at the first, so authors can fix a
// file in one pass.
func lintFile(path string) ([]model.Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var q model.Questionnaire
	if jsonErr := json.Unmarshal(raw, &q); jsonErr != nil {
		if yamlErr := yaml.Unmarshal(raw, &q); yamlErr != nil {
			return nil, fmt.Errorf("not valid JSON (%v) or YAML (%v)", jsonErr, yamlErr)
		}
	}

	return q.Problems(), nil
}
