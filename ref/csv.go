package ref

import(
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skypies/flytau"
)

var kRouteCSVHeader = []string{"origin", "destination", "minutes"}

// ReadRoutesCSV parses origin,destination,minutes rows. A header row is optional; blank lines
// are skipped.
func ReadRoutesCSV(r io.Reader) ([]flytau.Route, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	routes := []flytau.Route{}
	for line := 1; ; line++ {
		row,err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("ReadRoutesCSV: %v", err)
		}

		if line == 1 && strings.EqualFold(row[0], kRouteCSVHeader[0]) { continue }

		mins,err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil { return nil, fmt.Errorf("ReadRoutesCSV line %d: %v", line, err) }

		route := flytau.Route{
			Origin: flytau.NewAirport(row[0]),
			Destination: flytau.NewAirport(row[1]),
			Minutes: mins,
		}
		if err := route.Validate(); err != nil {
			return nil, fmt.Errorf("ReadRoutesCSV line %d: %v", line, err)
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func WriteRoutesCSV(w io.Writer, routes []flytau.Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(kRouteCSVHeader); err != nil { return err }
	for _,r := range routes {
		if err := cw.Write([]string{string(r.Origin), string(r.Destination), strconv.Itoa(r.Minutes)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
