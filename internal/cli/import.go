package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/geo-explorer/internal/app"
	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
)

var (
	continentDescription string
	countryByCode        bool
)

func init() {
	importContinentCmd.Flags().StringVarP(&continentDescription, "description", "d", "", "continent description")
	importCountryCmd.Flags().BoolVar(&countryByCode, "code", false, "treat the argument as an ISO alpha-2 code")

	importCmd.AddCommand(importContinentCmd, importCountryCmd, importCityCmd)
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import records into the local catalog, creating missing ancestors",
}

var importContinentCmd = &cobra.Command{
	Use:   "continent <name>",
	Short: "Create a continent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withComponents(cmd, func(c *app.Components, _ *slog.Logger) error {
			cont, err := c.Importer.AddContinent(cmd.Context(), importer.ContinentInput{
				Name:        name,
				Description: continentDescription,
			})
			if err != nil {
				return describe(err)
			}
			printContinent(cmd.OutOrStdout(), cont)
			return nil
		})
	},
}

var importCountryCmd = &cobra.Command{
	Use:   "country <name|code>",
	Short: "Fetch a country from the country gateway and store it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		return withComponents(cmd, func(c *app.Components, _ *slog.Logger) error {
			var ext *provider.Country
			if countryByCode {
				ext = c.Countries.FindCountryByCode(cmd.Context(), term)
			} else {
				ext = c.Countries.FindCountryByName(cmd.Context(), term)
			}
			if ext == nil {
				return fmt.Errorf("country %q not found upstream", term)
			}

			res, err := c.Importer.AddCountry(cmd.Context(), *ext)
			if err != nil {
				return describe(err)
			}
			printCountryResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var importCityCmd = &cobra.Command{
	Use:   "city <name>",
	Short: "Geocode a city and store it with its country and continent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withComponents(cmd, func(c *app.Components, _ *slog.Logger) error {
			ext := c.Cities.FindCity(cmd.Context(), name)
			if ext == nil {
				return fmt.Errorf("city %q not found upstream", name)
			}

			res, err := c.Importer.AddCity(cmd.Context(), *ext)
			if err != nil {
				return describe(err)
			}
			printCityResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

// describe turns import conflicts and validation failures into one-line messages.
func describe(err error) error {
	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		return fmt.Errorf("%s, nothing imported", dup.Error())
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			msgs = append(msgs, fe.Field+": "+fe.Message)
		}
		return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
	}
	return err
}
