package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"wbdeps/internal/dependency"
)

func newCyclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycles GRAPH",
		Short: "Find cycles in a variable dependency graph",
		Long: `Find the cycles of a dependency graph given as a YAML or JSON map from
each variable to the variables it depends on. Use - to read the graph
from standard input.

Each cycle is printed once, starting at its smallest member. The command
exits with code 2 when a cycle is found.

Example graph:
  Subscription: [FunctionApp]
  FunctionApp: [Subscription]
  TenantId: []`,
		Args: cobra.ExactArgs(1),
		RunE: runCycles,
	}
}

// loadAdjacency reads a dependency map from path. Keys are sorted so the
// output does not depend on map order.
func loadAdjacency(path string, stdin io.Reader) ([]string, map[string][]string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	adjacency := map[string][]string{}
	if err := yaml.UnmarshalStrict(data, &adjacency); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	keys := make([]string, 0, len(adjacency))
	for k := range adjacency {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, adjacency, nil
}

func runCycles(cmd *cobra.Command, args []string) error {
	keys, adjacency, err := loadAdjacency(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cycles := dependency.DetectCycles(dependency.FromAdjacency(keys, adjacency))
	if err := newFormatter(cmd).FormatCycles(cycles); err != nil {
		return err
	}
	if len(cycles) > 0 {
		return &DefectsError{Documents: 1}
	}
	return nil
}
