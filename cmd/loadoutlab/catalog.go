package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Lukeeddleman/loadoutlab-site/internal/app"
	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/compat"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
)

type catalogOptions struct {
	firearmType string
	subType     string
	category    string
	search      string
	jsonOut     bool
}

func newCatalogCmd(root *rootOptions) *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the parts compatible with a platform",
		Example: `  loadoutlab catalog --firearm-type rifle --sub-type ar15
  loadoutlab catalog --sub-type ar10 --category barrel
  loadoutlab catalog --catalog-file parts.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			cat, err := app.LoadCatalog(cfg)
			if err != nil {
				return err
			}
			return runCatalog(cmd.OutOrStdout(), cat, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.firearmType, "firearm-type", string(models.Rifle), "Firearm type: rifle, pistol, shotgun")
	f.StringVar(&opts.subType, "sub-type", "", "Sub-type, e.g. ar15 (all sub-types if unset)")
	f.StringVar(&opts.category, "category", "", "Only list this category")
	f.StringVarP(&opts.search, "search", "q", "", "Match part name, brand or description")
	f.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of a table")
	f.String("catalog-file", "", "Parts catalog YAML (embedded sample if unset)")

	return cmd
}

// catalogSection is one category in the catalog listing
type catalogSection struct {
	Category models.CategoryKey `json:"category"`
	Name     string             `json:"name"`
	Parts    []models.Part      `json:"parts"`
}

func runCatalog(w io.Writer, cat *catalog.Catalog, opts *catalogOptions) error {
	var platform *models.PlatformConfiguration
	if opts.subType != "" {
		platform = &models.PlatformConfiguration{
			FirearmType: models.FirearmType(opts.firearmType),
			SubType:     models.SubType(opts.subType),
		}
		if err := platform.Validate(); err != nil {
			return err
		}
	}

	if opts.category != "" && !cat.Has(models.CategoryKey(opts.category)) {
		return fmt.Errorf("unknown category %q", opts.category)
	}

	filter := catalog.Filter{Search: opts.search}
	compatible := compat.FilterCatalog(cat, platform)

	var sections []catalogSection
	for _, c := range cat.Categories() {
		if opts.category != "" && string(c.Key) != opts.category {
			continue
		}
		var parts []models.Part
		for _, p := range filter.Apply(compatible[c.Key]) {
			if !p.IsSentinel() {
				parts = append(parts, p)
			}
		}
		sections = append(sections, catalogSection{Category: c.Key, Name: c.Name, Parts: parts})
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sections)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range sections {
		fmt.Fprintf(tw, "%s (%d)\n", s.Name, len(s.Parts))
		for _, p := range s.Parts {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.ID, p.Brand, p.Name, p.Price)
		}
	}
	return tw.Flush()
}
