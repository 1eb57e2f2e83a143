package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ossvet/chainverify/internal/config"
	"github.com/ossvet/chainverify/internal/keys"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/logger"
	"github.com/ossvet/chainverify/internal/verify"
)

var (
	strictQueues           bool
	failOnCommandMismatch  bool
	persistInspectionLinks bool
	maxRecursionDepth      int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a layout against filed link metadata",
	Long: `verify checks a signed layout's owner signatures and expiry, loads every
step's link files, verifies functionary signatures and threshold agreement,
recurses into any sublayout substitutions, runs declared inspections, and
checks every step's and inspection's artifact rules.

  chainverify verify --layout root.layout --layout-key alice.pub --link-dir links/`,
	RunE: verifyCommand,
}

func init() {
	verifyCmd.Flags().BoolVar(&strictQueues, "strict-queues", false, "fail if any step leaves artifacts unconsumed by its rules")
	verifyCmd.Flags().BoolVar(&failOnCommandMismatch, "fail-on-command-mismatch", false, "treat expected_command drift as a hard failure instead of a warning")
	verifyCmd.Flags().BoolVar(&persistInspectionLinks, "persist-inspection-links", false, "write synthesized inspection links to --link-dir")
	verifyCmd.Flags().IntVar(&maxRecursionDepth, "max-recursion-depth", 0, "cap sublayout nesting depth (0 = default)")
	rootCmd.AddCommand(verifyCmd)
}

func verifyCommand(cmd *cobra.Command, args []string) error {
	if layoutPath == "" {
		return fmt.Errorf("--layout is required")
	}
	if len(ownerKeyPaths) == 0 {
		return fmt.Errorf("at least one --layout-key is required")
	}

	cfg, err := config.Load(layoutPath, ownerKeyPaths, linkDir,
		config.WithStrictQueues(strictQueues),
		config.WithFailOnCommandMismatch(failOnCommandMismatch),
		config.WithPersistInspectionLinks(persistInspectionLinks),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if maxRecursionDepth > 0 {
		cfg.MaxRecursionDepth = maxRecursionDepth
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}

	l, err := layout.Load(cfg.LayoutPath)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	ownerKeys, err := loadOwnerKeys(cfg.OwnerKeyPaths)
	if err != nil {
		return err
	}

	lg, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer lg.Close()

	opts := verify.DefaultOptions()
	opts.LinkDir = cfg.LinkDir
	opts.WorkDir = cfg.WorkDir
	opts.StrictQueues = cfg.StrictQueues
	opts.FailOnCommandMismatch = cfg.FailOnCommandMismatch
	opts.MaxRecursionDepth = cfg.MaxRecursionDepth
	opts.Log = lg
	if cfg.PersistInspectionLinks {
		opts.PersistDir = cfg.LinkDir
	}

	_, verifyErr := verify.Verify(l, ownerKeys, opts, 0, nil)
	report(verifyErr)
	if verifyErr != nil {
		return verifyErr
	}
	return nil
}

// loadOwnerKeys reads each path as a PEM-encoded owner public key and
// indexes it by keyid, the subject-public-key-info's hex-encoded SHA-256
// digest — the same identifier a layout's signatures list refers to.
func loadOwnerKeys(paths []string) (map[string]layout.Key, error) {
	out := make(map[string]layout.Key, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read owner key %s: %w", p, err)
		}
		keyID, err := keys.KeyIDFromPEM(data)
		if err != nil {
			return nil, fmt.Errorf("derive keyid for %s: %w", p, err)
		}
		out[keyID] = layout.Key{KeyID: keyID, Scheme: "pem", KeyValue: string(data)}
	}
	return out, nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func report(err error) {
	ok := err == nil
	icon, label, color := "\xe2\x9c\x85", "PASS", "\033[32m"
	if !ok {
		icon, label, color = "\xe2\x9d\x8c", "FAIL", "\033[31m"
	}

	if isInteractive() {
		fmt.Printf("%s%s %s\033[0m\n", color, icon, label)
	} else {
		fmt.Println(label)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
}
