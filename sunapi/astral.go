package sunapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Solar depression angles in degrees below the horizon.
const (
	depressionCivil        = 6.0
	depressionNautical     = 12.0
	depressionAstronomical = 18.0
)

// isoLayout matches the upstream API's formatted=0 timestamps.
const isoLayout = "2006-01-02T15:04:05-07:00"

// noEvent is what the upstream API reports for a twilight that never
// happens on that day (e.g. astronomical twilight in a northern summer).
const noEvent = "1970-01-01T00:00:01+00:00"

// AstralTimes is the payload produced by Astral. Field names match the
// upstream API so consumers see one shape regardless of provider.
type AstralTimes struct {
	Sunrise                   string `json:"sunrise"`
	Sunset                    string `json:"sunset"`
	SolarNoon                 string `json:"solar_noon"`
	DayLength                 int64  `json:"day_length"`
	CivilTwilightBegin        string `json:"civil_twilight_begin"`
	CivilTwilightEnd          string `json:"civil_twilight_end"`
	NauticalTwilightBegin     string `json:"nautical_twilight_begin"`
	NauticalTwilightEnd       string `json:"nautical_twilight_end"`
	AstronomicalTwilightBegin string `json:"astronomical_twilight_begin"`
	AstronomicalTwilightEnd   string `json:"astronomical_twilight_end"`
}

// Astral computes sun times locally. It never performs I/O.
type Astral struct{}

// NewAstral creates a local provider.
func NewAstral() *Astral {
	return &Astral{}
}

// SunTimes computes sun times for the UTC day date at lat/lon. Sunrise and
// sunset are required; when the sun does not cross the horizon (polar day
// or night) the result is ErrUnavailable.
func (a *Astral) SunTimes(_ context.Context, lat, lon, date string) (json.RawMessage, error) {
	times, err := a.Compute(lat, lon, date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(times)
}

// Compute returns the typed form of SunTimes.
func (a *Astral) Compute(lat, lon, date string) (AstralTimes, error) {
	flat, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return AstralTimes{}, fmt.Errorf("%w: latitude %q: %v", ErrUnavailable, lat, err)
	}
	flon, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return AstralTimes{}, fmt.Errorf("%w: longitude %q: %v", ErrUnavailable, lon, err)
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return AstralTimes{}, fmt.Errorf("%w: date %q: %v", ErrUnavailable, date, err)
	}

	obs := astral.Observer{Latitude: flat, Longitude: flon}

	sunrise, err := astral.Sunrise(obs, day)
	if err != nil {
		return AstralTimes{}, fmt.Errorf("%w: no sunrise: %v", ErrUnavailable, err)
	}
	sunset, err := astral.Sunset(obs, day)
	if err != nil {
		return AstralTimes{}, fmt.Errorf("%w: no sunset: %v", ErrUnavailable, err)
	}

	sunrise, sunset = sunrise.UTC(), sunset.UTC()
	length := sunset.Sub(sunrise)
	if length < 0 {
		// Sunset falls on the next UTC day at far western longitudes.
		length += 24 * time.Hour
	}
	noon := sunrise.Add(length / 2)

	out := AstralTimes{
		Sunrise:   sunrise.Format(isoLayout),
		Sunset:    sunset.Format(isoLayout),
		SolarNoon: noon.Format(isoLayout),
		DayLength: int64(length / time.Second),
	}
	out.CivilTwilightBegin = eventOrNone(astral.Dawn(obs, day, depressionCivil))
	out.CivilTwilightEnd = eventOrNone(astral.Dusk(obs, day, depressionCivil))
	out.NauticalTwilightBegin = eventOrNone(astral.Dawn(obs, day, depressionNautical))
	out.NauticalTwilightEnd = eventOrNone(astral.Dusk(obs, day, depressionNautical))
	out.AstronomicalTwilightBegin = eventOrNone(astral.Dawn(obs, day, depressionAstronomical))
	out.AstronomicalTwilightEnd = eventOrNone(astral.Dusk(obs, day, depressionAstronomical))
	return out, nil
}

func eventOrNone(t time.Time, err error) string {
	if err != nil {
		return noEvent
	}
	return t.UTC().Format(isoLayout)
}

var _ Provider = (*Astral)(nil)
