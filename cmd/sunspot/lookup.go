package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashishkumar256/sunspot/sunspot"
)

func lookupCommand(load loadFunc) *cobra.Command {
	var city, lat, lon, date string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve sun data once and print it as JSON",
		Example: `  sunspot lookup --city Cairo --date tomorrow
  sunspot lookup --lat 48.8566 --lon 2.3522 --date 2024-06-21`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if city == "" && (lat == "" || lon == "") {
				return errors.New("missing --city or --lat/--lon")
			}
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			var res *sunspot.Result
			if city != "" {
				res, err = a.resolver.LookupByCity(cmd.Context(), city, date)
			} else {
				res, err = a.resolver.LookupByCoordinates(cmd.Context(), lat, lon, date)
			}
			if err != nil {
				return fmt.Errorf("lookup: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City name; takes precedence over --lat/--lon")
	cmd.Flags().StringVar(&lat, "lat", "", "Latitude in decimal degrees")
	cmd.Flags().StringVar(&lon, "lon", "", "Longitude in decimal degrees")
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD, today, yesterday or tomorrow (default today)")
	return cmd
}
