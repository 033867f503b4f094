package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ent0n29/teamsguide/internal/planetbot"
	"github.com/ent0n29/teamsguide/internal/planets"
)

func planetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "planets [inner|outer|NAME]",
		Short: "List the planets the messaging extension searches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := planets.Default()
			if err != nil {
				return err
			}

			list := catalog.All()
			if len(args) == 1 {
				list = selectPlanets(catalog, args[0])
				if len(list) == 0 {
					return fmt.Errorf("no planet matches %q", args[0])
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSATELLITES\tORBIT (YEARS)\tAVG DISTANCE (KM)")
			for _, p := range list {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					p.ID, p.Name, p.NumSatellites,
					planets.FormatYears(p.SolarOrbitYears),
					planets.FormatDistance(p.SolarOrbitAvgDistanceKm))
			}
			return w.Flush()
		},
	}
}

// selectPlanets applies the search command's keyword rules.
func selectPlanets(catalog *planets.Catalog, term string) []planets.Planet {
	term = strings.ToLower(strings.TrimSpace(term))
	switch term {
	case planetbot.KeywordInner:
		return catalog.Inner()
	case planetbot.KeywordOuter:
		return catalog.Outer()
	}
	if p, ok := catalog.ByName(term); ok {
		return []planets.Planet{p}
	}
	return nil
}
