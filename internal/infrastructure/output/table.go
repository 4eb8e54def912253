package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TableFormatter formats responses for a terminal.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter. Color is off by default.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) tabs() *tabwriter.Writer {
	return tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
}

func scopeText(kind, label string) string {
	if label == "" {
		return kind
	}
	return kind + " " + label
}

// FormatList writes one row per profile.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatList(resp *dto.ListResponse) error {
	if len(resp.Profiles) == 0 {
		fmt.Fprintln(f.writer, "No database profiles found.")
		return nil
	}

	tw := f.tabs()
	fmt.Fprintln(tw, "NAME\tKIND\tSCOPE\tSTATUS\tDIRECTORY")
	for _, p := range resp.Profiles {
		status := "-"
		switch {
		case p.Shadowed:
			status = "shadowed"
		case p.Selected:
			status = "selected"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.Kind, scopeText(p.Scope, p.ScopeLabel), status, p.Directory)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if resp.Selected != "" {
		fmt.Fprintf(f.writer, "\nSelected profile: %s\n", f.colorize(resp.Selected, colorGreen))
	}
	return nil
}

// FormatResolve writes the selection outcome.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatResolve(resp *dto.ResolveResponse) error {
	fmt.Fprintf(f.writer, "Profile:    %s\n", f.colorize(resp.Name, colorBold))
	fmt.Fprintf(f.writer, "Source:     %s\n", resp.Source)
	if resp.Requested != "" && resp.Requested != resp.Name {
		fmt.Fprintf(f.writer, "Requested:  %s\n", f.colorize(resp.Requested, colorYellow))
	}
	fmt.Fprintf(f.writer, "Scope:      %s\n", resp.Scope)
	fmt.Fprintf(f.writer, "Directory:  %s\n", resp.Directory)
	fmt.Fprintf(f.writer, "Available:  %s\n", strings.Join(resp.Available, ", "))
	if resp.Replacements > 0 {
		fmt.Fprintf(f.writer, "Replaced:   %d time(s)\n", resp.Replacements)
	}
	return nil
}

// FormatProfile writes the full description of one profile.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatProfile(info *dto.ProfileInfo) error {
	fmt.Fprintf(f.writer, "Profile:    %s (%s)\n", f.colorize(info.Name, colorBold), info.Kind)
	fmt.Fprintf(f.writer, "Scope:      %s\n", info.Scope)
	fmt.Fprintf(f.writer, "Directory:  %s\n", info.Directory)
	fmt.Fprintf(f.writer, "Output:     %s\n", info.OutputDirectory)
	if info.Source != "" {
		fmt.Fprintf(f.writer, "Source:     %s\n", info.Source)
	}

	fmt.Fprintln(f.writer)
	if len(info.Properties) == 0 {
		fmt.Fprintln(f.writer, "Properties: none")
	} else {
		fmt.Fprintln(f.writer, "Properties:")
		if err := f.properties(info.Properties, "  "); err != nil {
			return err
		}
	}

	fmt.Fprintln(f.writer)
	deps := info.Dependencies
	if len(deps.Files)+len(deps.Notations) == 0 {
		fmt.Fprintf(f.writer, "Dependencies (%s): none\n", deps.Name)
	} else {
		fmt.Fprintf(f.writer, "Dependencies (%s):\n", deps.Name)
		for _, file := range deps.Files {
			fmt.Fprintf(f.writer, "  file  %s\n", file)
		}
		for _, n := range deps.Notations {
			fmt.Fprintf(f.writer, "  lib   %s\n", n)
		}
	}

	if len(info.Hooks) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "Hooks:")
		tw := f.tabs()
		for _, h := range info.Hooks {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", h.Phase, h.Name, strings.Join(h.Command, " "))
		}
		return tw.Flush()
	}
	return nil
}

// properties writes aligned key = value lines.
func (f *TableFormatter) properties(props []dto.Property, indent string) error {
	tw := f.tabs()
	for _, p := range props {
		fmt.Fprintf(tw, "%s%s\t= %s\n", indent, p.Key, p.Value)
	}
	return tw.Flush()
}

// FormatPlan writes each planned task with its configuration.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatPlan(resp *dto.PlanResponse) error {
	fmt.Fprintf(f.writer, "Selected profile: %s\n", f.colorize(resp.Selected, colorGreen))

	for _, task := range resp.Tasks {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, f.colorize(task.Name, colorBold))
		if task.Description != "" {
			fmt.Fprintf(f.writer, "  %s\n", f.colorize(task.Description, colorGray))
		}
		if task.Profile != "" {
			fmt.Fprintf(f.writer, "  profile:     %s\n", task.Profile)
		}
		for _, p := range task.InputProperties {
			fmt.Fprintf(f.writer, "  input:       %s=%s\n", p.Key, p.Value)
		}
		if len(task.SystemProperties) > 0 {
			fmt.Fprintln(f.writer, "  system properties:")
			if err := f.properties(task.SystemProperties, "    "); err != nil {
				return err
			}
		}
		if len(task.Classpath) > 0 {
			fmt.Fprintf(f.writer, "  classpath:   %s\n", strings.Join(task.Classpath, ", "))
		}
		if len(task.BeforeActions) > 0 {
			fmt.Fprintf(f.writer, "  before:      %s\n", hookList(task.BeforeActions))
		}
		if len(task.AfterActions) > 0 {
			fmt.Fprintf(f.writer, "  after:       %s\n", hookList(task.AfterActions))
		}
		if task.Listeners > 0 {
			fmt.Fprintf(f.writer, "  listeners:   %d\n", task.Listeners)
		}
		if len(task.DependsOn) > 0 {
			fmt.Fprintf(f.writer, "  depends on:  %s\n", strings.Join(task.DependsOn, ", "))
		}
	}
	return nil
}

func hookList(hooks []dto.HookInfo) string {
	parts := make([]string, len(hooks))
	for i, h := range hooks {
		parts[i] = h.Owner + "/" + h.Name
	}
	return strings.Join(parts, ", ")
}

// FormatValidate writes one line per problem.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatValidate(resp *dto.ValidateResponse) error {
	if len(resp.Problems) == 0 {
		fmt.Fprintf(f.writer, "%s %d definitions checked, all valid\n", f.colorize("✓", colorGreen), resp.Checked)
		return nil
	}

	fmt.Fprintf(f.writer, "%s %d definitions checked, %d malformed\n",
		f.colorize("✗", colorRed), resp.Checked, len(resp.Problems))
	for _, p := range resp.Problems {
		fmt.Fprintf(f.writer, "\n%s (%s)\n  %s\n  %s\n", p.Profile, p.Scope, p.Path, p.Message)
	}
	return nil
}

// FormatAugment writes the augmentation outcome.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatAugment(resp *dto.AugmentResponse) error {
	if resp.Changed {
		fmt.Fprintf(f.writer, "Augmented %s with profile %s\n", resp.Path, resp.Profile)
		return nil
	}
	fmt.Fprintf(f.writer, "%s is up to date with profile %s\n", resp.Path, resp.Profile)
	return nil
}
