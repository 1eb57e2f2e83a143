package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ossvet/chainverify/internal/rule"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Self-test — verify the rule engine accepts good flows and rejects bad ones",
	Long: `Run a quick diagnostic against the artifact rule evaluator using a set of
known-good and known-bad material/product scenarios. Nothing is read from
disk and no commands run — this only checks that the rule engine's
evaluators behave as expected.

  chainverify selftest`,
	RunE: selftestCommand,
}

func init() {
	rootCmd.AddCommand(selftestCmd)
}

type ruleCase struct {
	label   string
	rule    []string
	queue   rule.Queue
	counter rule.Queue
	wantOK  bool
}

func selftestCommand(cmd *cobra.Command, args []string) error {
	fmt.Println("─── Artifact Rule Engine ───────────────────────────────")

	cases := []ruleCase{
		{"CREATE new product", []string{"CREATE", "out.bin"}, rule.Queue{"out.bin"}, rule.Queue{}, true},
		{"CREATE pre-existing", []string{"CREATE", "out.bin"}, rule.Queue{"out.bin"}, rule.Queue{"out.bin"}, false},
		{"DELETE removed material", []string{"DELETE", "tmp.o"}, rule.Queue{"tmp.o"}, rule.Queue{}, true},
		{"DELETE survives", []string{"DELETE", "tmp.o"}, rule.Queue{"tmp.o"}, rule.Queue{"tmp.o"}, false},
		{"DISALLOW absent", []string{"DISALLOW", "*.key"}, rule.Queue{"out.bin"}, nil, true},
		{"DISALLOW present", []string{"DISALLOW", "*.key"}, rule.Queue{"id.key"}, nil, false},
	}

	pass, fail := 0, 0
	for _, tc := range cases {
		r, err := rule.Parse(tc.rule)
		if err != nil {
			fmt.Printf("  \xe2\x9d\x8c  %-26s  parse error: %v\n", tc.label, err)
			fail++
			continue
		}

		ok := runRuleCase(r, tc)
		icon := "\xe2\x9c\x85"
		if ok != tc.wantOK {
			icon = "\xe2\x9d\x8c"
			fail++
		} else {
			pass++
		}
		fmt.Printf("  %s  %-26s  %s\n", icon, tc.label, tc.rule)
	}

	fmt.Printf("\n  Rule engine: %d/%d passed\n\n", pass, len(cases))

	if fail > 0 {
		return fmt.Errorf("%d self-test case(s) failed", fail)
	}
	return nil
}

func runRuleCase(r rule.Rule, tc ruleCase) bool {
	switch r.Kind {
	case rule.Create:
		_, err := rule.EvalCreate(r, tc.label, tc.queue, tc.counter)
		return err == nil
	case rule.Delete:
		_, err := rule.EvalDelete(r, tc.label, tc.queue, tc.counter)
		return err == nil
	case rule.Disallow:
		err := rule.EvalDisallow(r, tc.label, tc.queue)
		return err == nil
	default:
		return false
	}
}
