package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/roostdev/roost/internal/agecrypt"
	"github.com/roostdev/roost/internal/audit"
	"github.com/roostdev/roost/internal/config"
	"github.com/roostdev/roost/internal/envstore"
	"github.com/roostdev/roost/internal/logging"
	"github.com/roostdev/roost/internal/runner"
	"github.com/roostdev/roost/internal/tags"
)

var (
	manifestFile string
	dryRun       bool
	verbosity    int
	noAudit      bool
)

var (
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "roost",
		Short: "A declarative home directory bootstrapper",
		Long: `roost converges your home directory and user-scoped environment toward a
tracked configuration repository: links, copies, shell-init directives,
directories, PATH entries, and environment variables, declared once in a
YAML manifest and applied idempotently.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
		},
	}

	root.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "roost.yaml", "path to the action manifest")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report what would happen without changing anything")
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVar(&noAudit, "no-audit", false, "do not record applied actions in the audit log")

	root.AddCommand(
		applyCmd(),
		statusCmd(),
		listCmd(),
		initCmd(),
		logCmd(),
		tagCmd(),
		envCmd(),
		encryptCmd(),
		decryptCmd(),
	)
	return root
}

func loadManifest() (config.Manifest, error) {
	m, err := config.Load(manifestFile)
	if err != nil {
		return config.Manifest{}, fmt.Errorf("load manifest %q: %w", manifestFile, err)
	}
	return m, nil
}

// --- apply -------------------------------------------------------------------

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply every declared action and report per-action results",
		Example: `  roost apply
  roost apply --dry-run
  roost apply -m ~/dotfiles/roost.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest()
			if err != nil {
				return err
			}
			r := runner.New(m, dryRun)
			r.NoAudit = noAudit

			rep := r.Run(context.Background(), m.Actions)
			rep.Render(os.Stdout)
			if rep.HasFailures() {
				os.Exit(1)
			}
			return nil
		},
	}
}

// --- status ------------------------------------------------------------------

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which declared actions are already converged, without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest()
			if err != nil {
				return err
			}
			r := runner.New(m, true)
			r.NoAudit = true

			for _, st := range r.Status(context.Background(), m.Actions) {
				state := fmt.Sprintf("%-8s", st.State)
				switch st.State {
				case "applied":
					state = successStyle.Render(state)
				case "pending":
					state = pendingStyle.Render(state)
				case "failed":
					state = failedStyle.Render(state)
				default:
					state = dimStyle.Render(state)
				}
				detail := st.Item.Source
				if st.Detail != "" {
					detail = st.Detail
				}
				fmt.Printf("%s  %-12s  %-40s  %s\n", state, st.Item.Kind, st.Target, dimStyle.Render(detail))
			}
			return nil
		},
	}
}

// --- list --------------------------------------------------------------------

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the declared actions in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest()
			if err != nil {
				return err
			}
			fmt.Printf("repo: %s\n\n", m.Repo)
			for i, item := range m.Actions {
				extra := ""
				if item.Optional {
					extra += " [optional]"
				}
				if len(item.Tags) > 0 {
					extra += " [tags: " + strings.Join(item.Tags, ",") + "]"
				}
				fmt.Printf("%3d  %-12s  %-30s  %s%s\n", i, item.Kind, item.Source, item.Destination, dimStyle.Render(extra))
			}
			return nil
		},
	}
}

// --- init --------------------------------------------------------------------

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively scaffold a starter manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := "."
			trackProfile := true
			addBinToPath := false

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Configuration repository root").
						Description("Relative sources in the manifest resolve under this directory.").
						Value(&repo),
					huh.NewConfirm().
						Title("Source a shell/aliases.sh file from your shell profile?").
						Value(&trackProfile),
					huh.NewConfirm().
						Title("Add ~/bin to your user PATH?").
						Value(&addBinToPath),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			m := config.Manifest{Repo: repo}
			if trackProfile {
				m.Actions = append(m.Actions, config.Item{
					Kind:        config.KindAppend,
					Source:      "shell/aliases.sh",
					Destination: ".bashrc",
					Optional:    true,
				})
			}
			if addBinToPath {
				m.Actions = append(m.Actions, config.Item{
					Kind:        config.KindUserPath,
					Destination: "bin",
					Persist:     true,
				})
			}

			if _, err := os.Stat(manifestFile); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", manifestFile)
			}
			if err := config.Save(manifestFile, m); err != nil {
				return err
			}
			fmt.Printf("wrote %s with %d starter action(s)\n", manifestFile, len(m.Actions))
			return nil
		},
	}
}

// --- log ---------------------------------------------------------------------

func logCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit log of applied actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := audit.Read(limit)
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println(dimStyle.Render("(no log entries)"))
				return nil
			}

			fmt.Println(boldStyle.Render(fmt.Sprintf("%-20s  %-12s  %-8s  %s", "TIME", "METHOD", "OUTCOME", "TARGET")))
			for _, e := range entries {
				outcome := fmt.Sprintf("%-8s", e.Outcome)
				if e.Outcome == "failed" {
					outcome = failedStyle.Render(outcome)
				} else {
					outcome = successStyle.Render(outcome)
				}
				target := e.Target
				if e.Error != "" {
					target += "  " + dimStyle.Render(e.Error)
				}
				fmt.Printf("%-20s  %-12s  %s  %s\n", e.Time.Local().Format(time.DateTime), e.Method, outcome, target)
			}
			fmt.Printf("\nlog: %s\n", audit.LogPath())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}

// --- tag ---------------------------------------------------------------------

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage machine tags used to gate manifest items",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print current machine tags",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := tags.EnsureInitialised(); err != nil {
					return err
				}
				cfg, err := tags.Load()
				if err != nil {
					return err
				}
				fmt.Printf("machine config: %s\n", tags.ConfigPath())
				if len(cfg.Tags) == 0 {
					fmt.Println("(no tags)")
					return nil
				}
				for _, t := range cfg.Tags {
					fmt.Printf("  - %s\n", t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <tag>",
			Short: "Add a tag to this machine",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := tags.EnsureInitialised(); err != nil {
					return err
				}
				if err := tags.Add(args[0]); err != nil {
					return err
				}
				fmt.Printf("added tag %q\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// --- env ---------------------------------------------------------------------

func envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Inspect the persistent user-scoped store",
	}

	store := envstore.NewFile()

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every stored value",
			RunE: func(cmd *cobra.Command, args []string) error {
				keys, values, err := store.All()
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					fmt.Println(dimStyle.Render("(store is empty)"))
					return nil
				}
				for _, k := range keys {
					fmt.Printf("%s=%s\n", k, values[k])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print one stored value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, ok, err := store.Get(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s is not set", args[0])
				}
				fmt.Println(v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Write one value to the store",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return store.Set(args[0], args[1])
			},
		},
	)
	return cmd
}

// --- encrypt / decrypt ---------------------------------------------------------

func keyFromManifest() (*agecrypt.Key, error) {
	m, err := loadManifest()
	if err != nil {
		return nil, err
	}
	key := agecrypt.FromEnv(m.Age.Identity, m.Age.Passphrase)
	if key == nil {
		return nil, fmt.Errorf("no age key configured; set age.identity or age.passphrase in %s, or ROOST_AGE_IDENTITY / ROOST_AGE_PASSPHRASE", manifestFile)
	}
	return key, nil
}

func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a repository file with the configured age key (writes <file>.age)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFromManifest()
			if err != nil {
				return err
			}
			src := args[0]
			dst := agecrypt.StoredPath(src)
			fmt.Printf("encrypting %s -> %s\n", src, dst)
			return key.EncryptFile(src, dst)
		},
	}
}

func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <file.age>",
		Short: "Decrypt an age-encrypted file (writes without the .age extension)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFromManifest()
			if err != nil {
				return err
			}
			src := args[0]
			dst := strings.TrimSuffix(src, ".age")
			if dst == src {
				dst = src + ".out"
			}
			fmt.Printf("decrypting %s -> %s\n", src, dst)
			return key.DecryptFile(src, dst)
		},
	}
}
