package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/geo-explorer/internal/app"
)

func init() {
	rootCmd.AddCommand(searchCmd, weatherCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Classify a term as a region, country or city using the external gateways",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		return withComponents(cmd, func(c *app.Components, _ *slog.Logger) error {
			res, err := c.Lookup.Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			printSearch(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var weatherCmd = &cobra.Command{
	Use:   "weather <lat> <lon>",
	Short: "Show the current weather at a coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lon, err := parseCoordinate(args[0], args[1])
		if err != nil {
			return err
		}
		return withComponents(cmd, func(c *app.Components, _ *slog.Logger) error {
			wx, err := c.Lookup.Weather(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}
			printWeather(cmd.OutOrStdout(), wx)
			return nil
		})
	},
}

func parseCoordinate(latArg, lonArg string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latArg)
	}
	lon, err := strconv.ParseFloat(lonArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonArg)
	}
	return lat, lon, nil
}
