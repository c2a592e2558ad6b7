package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/drumato/fsshim/config"
	"github.com/drumato/fsshim/filesystem"
	"github.com/drumato/fsshim/runner"
	"github.com/drumato/fsshim/template"
	"github.com/spf13/cobra"
	kyaml "sigs.k8s.io/yaml"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger
	fs     *filesystem.DefaultFileSystem
}

func New() *cobra.Command {
	a := &app{}

	c := cobra.Command{
		Use:   "fsshim",
		Short: "Run filesystem operations through the fsshim facade",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFilePath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			cfg, err := config.LoadFile(filesystem.NewDefaultFileSystem(), configFilePath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				slog.Error("Configuration validation failed", "error", err)
				return err
			}

			a.cfg = cfg
			a.logger = slog.Default()
			if cfg.LogLevel != "" {
				level, _ := config.ParseLogLevel(cfg.LogLevel)
				a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			}
			a.fs = filesystem.NewDefaultFileSystem(filesystem.WithLogger(a.logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.PersistentFlags().StringP("config", "c", "", "Path to config file")
	c.AddCommand(
		a.newMkdirCommand(),
		a.newRmCommand(),
		a.newCpCommand(),
		a.newMvCommand(),
		a.newLsCommand(),
		a.newCopyDirCommand(),
		a.newApplyCommand(),
	)
	return &c
}

// recursiveFlag returns the flag value when it was set, the configured
// default otherwise.
func (a *app) recursiveFlag(cmd *cobra.Command, name string) (bool, error) {
	if !cmd.Flags().Changed(name) {
		return a.cfg.Recursive, nil
	}
	return cmd.Flags().GetBool(name)
}

func (a *app) newMkdirCommand() *cobra.Command {
	c := cobra.Command{
		Use:   "mkdir PATH...",
		Short: "Create directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recursive, err := a.recursiveFlag(cmd, "parents")
			if err != nil {
				return err
			}
			perm := a.cfg.DirPermission
			if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
				perm, err = config.ParsePermission(mode)
				if err != nil {
					return err
				}
			}
			for _, path := range args {
				if err := a.fs.Mkdir(cmd.Context(), path, perm.FileMode(), recursive); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().BoolP("parents", "p", false, "Create missing parent directories")
	c.Flags().StringP("mode", "m", "", "Directory permission in octal (default from config)")
	return &c
}

func (a *app) newRmCommand() *cobra.Command {
	c := cobra.Command{
		Use:   "rm PATH...",
		Short: "Remove files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recursive, err := a.recursiveFlag(cmd, "recursive")
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := a.fs.Rm(cmd.Context(), path, recursive); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c.Flags().BoolP("recursive", "r", false, "Remove directories and their contents")
	return &c
}

func (a *app) newCpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp SOURCE DEST",
		Short: "Copy a file or a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fs.Cp(args[0], args[1])
		},
	}
}

func (a *app) newMvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv SOURCE DEST",
		Short: "Rename a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fs.Mv(args[0], args[1])
		},
	}
}

func (a *app) newCopyDirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copydir SOURCE DEST",
		Short: "Copy a directory tree to a new directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fs.CopyDirectory(args[0], args[1])
		},
	}
}

type listing struct {
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
}

func (a *app) newLsCommand() *cobra.Command {
	c := cobra.Command{
		Use:   "ls [PATH]",
		Short: "List directory entries, including . and ..",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			output := a.cfg.Output
			if cmd.Flags().Changed("output") {
				o, _ := cmd.Flags().GetString("output")
				output = config.OutputFormat(o)
			}

			entries, err := a.fs.Ls(path)
			if err != nil {
				return err
			}
			return writeListings(cmd.OutOrStdout(), output, []listing{{Path: path, Entries: entries}})
		},
	}
	c.Flags().StringP("output", "o", "", "Output format: text, yaml or json")
	return &c
}

func writeListings(w io.Writer, output config.OutputFormat, listings []listing) error {
	switch output {
	case config.OutputText:
		for _, l := range listings {
			if len(listings) > 1 {
				if _, err := fmt.Fprintf(w, "%s:\n", l.Path); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, strings.Join(l.Entries, "\n")); err != nil {
				return err
			}
		}
		return nil
	case config.OutputYAML:
		out, err := kyaml.Marshal(listings)
		if err != nil {
			return fmt.Errorf("failed to marshal listing to yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func (a *app) newApplyCommand() *cobra.Command {
	c := cobra.Command{
		Use:   "apply -f PLAN",
		Short: "Apply a YAML plan of operations in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath, err := cmd.Flags().GetString("filename")
			if err != nil {
				return err
			}
			data, err := a.fs.ReadFile(planPath)
			if err != nil {
				return err
			}
			if valuesPath, _ := cmd.Flags().GetString("values"); valuesPath != "" {
				renderer := template.New(a.logger, a.fs)
				data, err = renderer.Render(data, valuesPath)
				if err != nil {
					return fmt.Errorf("%s: %w", planPath, err)
				}
			} else if template.HasTemplateVars(data) {
				return fmt.Errorf("%s: plan contains template actions, pass --values to render it", planPath)
			}
			plan, err := runner.ParsePlan(data)
			if err != nil {
				return fmt.Errorf("%s: %w", planPath, err)
			}

			r := runner.New(a.logger,
				runner.WithFileSystem(a.fs),
				runner.WithDirPermission(a.cfg.DirPermission.FileMode()),
			)
			results, err := r.Run(cmd.Context(), *plan)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return nil
			}

			listings := make([]listing, 0, len(results))
			for _, res := range results {
				listings = append(listings, listing{Path: res.Path, Entries: res.Entries})
			}
			return writeListings(cmd.OutOrStdout(), a.cfg.Output, listings)
		},
	}
	c.Flags().StringP("filename", "f", "", "Path to plan file")
	c.Flags().String("values", "", "Path to a YAML values file; the plan is rendered as a template with them")
	_ = c.MarkFlagRequired("filename")
	return &c
}
