package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/sahlab/labctl/internal/registry"
)

var (
	listFormat string
	listFilter string
)

// ProfileEnv is the expression environment for --filter: one registered
// profile as seen by the filter language.
type ProfileEnv struct {
	Name    string `expr:"name"`
	Java    string `expr:"java"`
	SnpEff  string `expr:"snpeff"`
	Memory  string `expr:"memory"`
	Current bool   `expr:"current"`
}

// profileView is the YAML projection of a registered profile.
type profileView struct {
	Name      string `yaml:"name"`
	JavaHome  string `yaml:"java_home"`
	SnpEff    string `yaml:"snpeff_home"`
	Memory    string `yaml:"memory"`
	CreatedAt string `yaml:"created_at,omitempty"`
	Path      string `yaml:"path"`
	Current   bool   `yaml:"current"`
}

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered profiles",
	Long: `List every profile in the registry, marking the current one.

Filtering:
  --filter "name startsWith '5.'"   expression over name, java, snpeff,
                                    memory, and current`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, yaml")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Filter expression (e.g. \"memory == '8g' && !current\")")
}

func runList() error {
	s := settings()
	reg := registry.New(s.RegistryDir)

	infos, err := reg.List()
	if err != nil {
		return err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	if listFilter != "" {
		infos, err = filterProfiles(infos, listFilter)
		if err != nil {
			return err
		}
	}

	switch listFormat {
	case "table":
		return printTable(infos)
	case "yaml":
		return printYAML(infos)
	default:
		return fmt.Errorf("unknown format: %s (supported: table, yaml)", listFormat)
	}
}

// filterProfiles compiles the expression once and evaluates it per profile.
func filterProfiles(infos []registry.Info, src string) ([]registry.Info, error) {
	program, err := expr.Compile(src, expr.Env(ProfileEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid --filter expression: %w\nExample: memory == '8g' && !current", err)
	}

	var kept []registry.Info
	for _, info := range infos {
		env := ProfileEnv{
			Name:    info.Name,
			Java:    info.JavaHome,
			SnpEff:  info.SnpEffHome,
			Memory:  info.Memory,
			Current: info.IsCurrent,
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluating --filter for %s: %w", info.Name, err)
		}
		if out.(bool) {
			kept = append(kept, info)
		}
	}
	return kept, nil
}

func printTable(infos []registry.Info) error {
	if len(infos) == 0 {
		fmt.Println("No profiles registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENT\tNAME\tMEMORY\tSNPEFF HOME")
	for _, info := range infos {
		marker := ""
		if info.IsCurrent {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, info.Name, info.Memory, info.SnpEffHome)
	}
	return w.Flush()
}

func printYAML(infos []registry.Info) error {
	views := make([]profileView, 0, len(infos))
	for _, info := range infos {
		v := profileView{
			Name:     info.Name,
			JavaHome: info.JavaHome,
			SnpEff:   info.SnpEffHome,
			Memory:   info.Memory,
			Path:     info.Path,
			Current:  info.IsCurrent,
		}
		if !info.CreatedAt.IsZero() {
			v.CreatedAt = info.CreatedAt.Format(time.RFC3339)
		}
		views = append(views, v)
	}

	out, err := yaml.Marshal(views)
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
