package cli

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
	"github.com/heartmarshall/geo-explorer/internal/service/lookup"
)

func printSearch(w io.Writer, res *lookup.Result) {
	fmt.Fprintf(w, "%s: %s\n", res.Kind, res.Term)

	switch res.Kind {
	case domain.SearchKindRegion:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tCAPITAL\tPOPULATION")
		for _, c := range res.Region {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Name, strings.Join(c.Capital, ", "), popString(c.Population))
		}
		tw.Flush()
	case domain.SearchKindCountry:
		printExternalCountry(w, res.Country)
	case domain.SearchKindCity:
		printExternalCity(w, res.City)
	}

	if res.Weather != nil {
		printWeather(w, res.Weather)
	}
}

func printExternalCountry(w io.Writer, c *provider.Country) {
	fmt.Fprintf(w, "  name:       %s\n", c.Name)
	fmt.Fprintf(w, "  code:       %s\n", c.Code)
	fmt.Fprintf(w, "  region:     %s\n", c.Region)
	fmt.Fprintf(w, "  capital:    %s\n", strings.Join(c.Capital, ", "))
	fmt.Fprintf(w, "  population: %s\n", popString(c.Population))
	if cur := c.FirstCurrencyName(); cur != "" {
		fmt.Fprintf(w, "  currency:   %s\n", cur)
	}
	if lang := c.FirstLanguage(); lang != "" {
		fmt.Fprintf(w, "  language:   %s\n", lang)
	}
}

func printExternalCity(w io.Writer, c *provider.City) {
	fmt.Fprintf(w, "  name:       %s\n", c.Name)
	fmt.Fprintf(w, "  country:    %s (%s)\n", c.Country, c.CountryCode)
	fmt.Fprintf(w, "  coordinate: %.4f, %.4f\n", c.Latitude, c.Longitude)
	fmt.Fprintf(w, "  population: %s\n", popString(c.Population))
}

func printWeather(w io.Writer, wx *provider.Weather) {
	day := "night"
	if wx.IsDay {
		day = "day"
	}
	fmt.Fprintf(w, "  weather:    %.1f°C, wind %.1f km/h at %.0f°, code %d, %s (%s)\n",
		wx.Temperature, wx.WindSpeed, wx.WindDirection, wx.WeatherCode, day, wx.Time)
}

func printContinent(w io.Writer, c *domain.Continent) {
	fmt.Fprintf(w, "continent #%d %s\n", c.ID, c.Name)
}

func printCountryResult(w io.Writer, r *importer.CountryResult) {
	if r.ContinentAutoCreated {
		fmt.Fprintf(w, "continent %s created\n", r.ContinentName)
	}
	fmt.Fprintf(w, "country #%d %s (%s), population %s\n",
		r.Country.ID, r.Country.Name, r.Country.Code, popString(r.Country.Population))
}

func printCityResult(w io.Writer, r *importer.CityResult) {
	if r.ContinentAutoCreated {
		fmt.Fprintf(w, "continent %s created\n", r.ContinentName)
	}
	if r.CountryAutoCreated && r.Country != nil {
		fmt.Fprintf(w, "country #%d %s (%s) created\n", r.Country.ID, r.Country.Name, r.Country.Code)
	}
	fmt.Fprintf(w, "city #%d %s, population %s\n", r.City.ID, r.City.Name, popString(r.City.Population))
}

func popString(p *big.Int) string {
	if p == nil {
		return "0"
	}
	return p.String()
}
