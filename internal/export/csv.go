// Package export renders filtered readings as the downloadable CSV document.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/chrissnell/airquality/internal/types"
)

// Filename is the name the document is offered under.
const Filename = "air-quality-data.csv"

// ContentType is the MIME type of the document.
const ContentType = "text/csv"

// Header lists the columns in output order.
var Header = []string{"Date", "City", "PM2.5", "PM10", "NO2", "SO2", "O3", "CO", "AQI", "Category"}

// CSV renders a header line plus one line per reading. Fields are joined with
// commas and lines with "\n", with no trailing newline and no quoting: every
// field is a date, number, city name or category name. Readings whose city
// cannot be resolved get an empty City field.
func CSV(readings []types.Reading, cities []types.City) string {
	names := make(map[string]string, len(cities))
	for _, c := range cities {
		names[c.ID] = c.Name
	}

	lines := make([]string, 0, len(readings)+1)
	lines = append(lines, strings.Join(Header, ","))

	row := make([]string, len(Header))
	for _, r := range readings {
		row[0] = r.Date
		row[1] = names[r.CityID]
		row[2] = formatNumber(r.PM25)
		row[3] = formatNumber(r.PM10)
		row[4] = formatNumber(r.NO2)
		row[5] = formatNumber(r.SO2)
		row[6] = formatNumber(r.O3)
		row[7] = formatNumber(r.CO)
		row[8] = strconv.Itoa(r.AQI)
		row[9] = r.Category.String()
		lines = append(lines, strings.Join(row, ","))
	}

	return strings.Join(lines, "\n")
}

// WriteCSV writes the document produced by CSV to w.
func WriteCSV(w io.Writer, readings []types.Reading, cities []types.City) error {
	_, err := io.WriteString(w, CSV(readings, cities))
	return err
}

// formatNumber renders the shortest representation that round-trips, so 25
// stays "25" and 0.8 stays "0.8".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
