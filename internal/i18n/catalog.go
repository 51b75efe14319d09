// Package i18n provides the localized strings and date formatting used to
// render weather state.
package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	KeyTemperature        = "formatted_temperature"
	KeyWindSpeed          = "formatted_wind_speed"
	KeyLocation           = "location"
	KeyLastUpdated        = "last_updated"
	KeyNoInternet         = "no_internet_connection"
	KeySomethingWentWrong = "something_went_wrong"
)

// Unit-specific variants of the temperature and wind speed templates.
const (
	keyTemperatureMetric   = KeyTemperature + ".metric"
	keyTemperatureImperial = KeyTemperature + ".imperial"
	keyTemperatureStandard = KeyTemperature + ".standard"
	keyWindSpeedMetric     = KeyWindSpeed + ".metric"
	keyWindSpeedImperial   = KeyWindSpeed + ".imperial"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		keyTemperatureMetric:   "%d°C",
		keyTemperatureImperial: "%d°F",
		keyTemperatureStandard: "%d K",
		keyWindSpeedMetric:     "%d m/s",
		keyWindSpeedImperial:   "%d mph",
		KeyLocation:            "%s",
		KeyLastUpdated:         "Last updated: %s",
		KeyNoInternet:          "No internet connection",
		KeySomethingWentWrong:  "Something went wrong",
	},
	language.German: {
		keyTemperatureMetric:   "%d °C",
		keyTemperatureImperial: "%d °F",
		keyTemperatureStandard: "%d K",
		keyWindSpeedMetric:     "%d m/s",
		keyWindSpeedImperial:   "%d mph",
		KeyLocation:            "%s",
		KeyLastUpdated:         "Zuletzt aktualisiert: %s",
		KeyNoInternet:          "Keine Internetverbindung",
		KeySomethingWentWrong:  "Etwas ist schiefgelaufen",
	},
}

// supported lists the catalog languages; the first one is the fallback.
var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			// Only fails for malformed messages, which the table above does not hold.
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Catalog resolves message keys for one locale and unit system.
type Catalog struct {
	locale  Locale
	printer *message.Printer
	units   string
}

// New creates a Catalog. units is the OpenWeatherMap unit system
// (metric, imperial or standard) and selects the measurement suffixes.
func New(locale Locale, units string) *Catalog {
	return &Catalog{
		locale:  locale,
		printer: message.NewPrinter(messageLanguage(locale.Tag()), message.Catalog(newCatalog())),
		units:   units,
	}
}

// String returns the localized message for key formatted with args.
func (c *Catalog) String(key string, args ...any) string {
	return c.printer.Sprintf(c.resolve(key), args...)
}

// FormatDateTime renders t as a localized medium date and short time.
func (c *Catalog) FormatDateTime(t time.Time) string {
	return c.locale.FormatDateTime(t)
}

func (c *Catalog) resolve(key string) string {
	switch key {
	case KeyTemperature:
		switch c.units {
		case "imperial":
			return keyTemperatureImperial
		case "standard":
			return keyTemperatureStandard
		default:
			return keyTemperatureMetric
		}
	case KeyWindSpeed:
		if c.units == "imperial" {
			return keyWindSpeedImperial
		}
		return keyWindSpeedMetric
	default:
		return key
	}
}

// messageLanguage picks the catalog language closest to tag, or English.
func messageLanguage(tag language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}
