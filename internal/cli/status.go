package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which steps have filed link files in --link-dir",
	Long: `Scan --link-dir for recognizable link filenames and report which steps
have at least one functionary's link filed, which are still unfinished, and
which declared steps have nothing filed yet.

  chainverify status --layout layout.yaml --link-dir .`,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	found, err := link.Discover(linkDir)
	if err != nil {
		return fmt.Errorf("scan link directory: %w", err)
	}

	declared := map[string]bool{}
	if layoutPath != "" {
		l, err := layout.Load(layoutPath)
		if err == nil {
			for _, s := range l.Steps {
				declared[s.Name] = true
			}
		}
	}

	fmt.Println("─── Link Directory ─────────────────────────────────────")
	fmt.Printf("  %s\n\n", linkDir)

	steps := make([]string, 0, len(found))
	for step := range found {
		steps = append(steps, step)
	}
	for step := range declared {
		if _, ok := found[step]; !ok {
			steps = append(steps, step)
		}
	}
	sort.Strings(steps)

	for _, step := range steps {
		entries := found[step]
		finished, unfinished := 0, 0
		for _, e := range entries {
			if e.Unfinished {
				unfinished++
			} else {
				finished++
			}
		}

		icon := "\xe2\x9c\x85" // ✅
		label := fmt.Sprintf("%d link(s)", finished)
		if finished == 0 {
			icon = "\xe2\xac\x9a" // ⬚
			label = "no finished link"
		}
		if unfinished > 0 {
			label += fmt.Sprintf(", %d unfinished", unfinished)
		}
		fmt.Printf("  %s  %-20s  %s\n", icon, step, label)
	}

	return nil
}
