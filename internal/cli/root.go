package cli

import (
	"github.com/spf13/cobra"
)

var (
	layoutPath    string
	ownerKeyPaths []string
	linkDir       string
	logPath       string
)

var rootCmd = &cobra.Command{
	Use:   "chainverify",
	Short: "chainverify - supply-chain layout and link verifier",
	Long: `chainverify checks a signed software supply-chain layout against the
signed link metadata its steps produced: functionary signatures, expiry,
threshold agreement, artifact flow rules, sublayout substitution and
declared inspections, the same chain of custody in-toto-style tooling
verifies before trusting a build's output.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&layoutPath, "layout", "", "Path to the signed layout file")
	rootCmd.PersistentFlags().StringArrayVar(&ownerKeyPaths, "layout-key", nil, "Path to an owner public key that must have signed the layout (repeatable)")
	rootCmd.PersistentFlags().StringVar(&linkDir, "link-dir", ".", "Directory containing link files")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ~/.chainverify/audit.jsonl)")
}

func Execute() error {
	return rootCmd.Execute()
}
