package i18n

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locale holds the resolved language tag and display time zone.
type Locale struct {
	tag language.Tag
	tz  *time.Location
}

// DetectLocale resolves the locale from raw when set, otherwise from
// LC_ALL, LC_TIME and LANG in that order. Falls back to en-US.
func DetectLocale(raw string, tz *time.Location) Locale {
	if raw == "" {
		raw = os.Getenv("LC_ALL")
	}
	if raw == "" {
		raw = os.Getenv("LC_TIME")
	}
	if raw == "" {
		raw = os.Getenv("LANG")
	}
	return NewLocale(raw, tz)
}

// NewLocale parses a POSIX locale ("de_DE.UTF-8") or BCP 47 tag ("de-DE").
// Empty or unparseable input yields en-US; a nil tz means UTC.
func NewLocale(raw string, tz *time.Location) Locale {
	if idx := strings.IndexByte(raw, '.'); idx != -1 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, "_", "-")

	tag, _ := language.Parse(raw)
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	if tz == nil {
		tz = time.UTC
	}
	return Locale{tag: tag, tz: tz}
}

// Tag returns the resolved language tag.
func (l Locale) Tag() language.Tag {
	return l.tag
}

// FormatDateTime renders t as a medium date followed by a short time, in the
// locale's time zone.
func (l Locale) FormatDateTime(t time.Time) string {
	return t.In(l.tz).Format(l.dateLayout() + ", " + l.timeLayout())
}

func (l Locale) region() string {
	region, _ := l.tag.Region()
	return region.String()
}

func (l Locale) dateLayout() string {
	if layout, ok := dateLayouts[l.region()]; ok {
		return layout
	}
	base, _ := l.tag.Base()
	if layout, ok := dateLayoutsByLang[base.String()]; ok {
		return layout
	}
	return dateLayoutDefault
}

func (l Locale) timeLayout() string {
	if twelveHourRegions[l.region()] {
		return layoutTime12
	}
	return layoutTime24
}

// Go reference time: Mon Jan 2 15:04:05 MST 2006.
const (
	layoutMDY    = "Jan 2, 2006"
	layoutDMY    = "2 Jan 2006"
	layoutYMD    = "2006-01-02"
	layoutDMYDot = "02.01.2006"

	layoutTime12 = "3:04 PM"
	layoutTime24 = "15:04"

	dateLayoutDefault = layoutMDY
)

var dateLayouts = map[string]string{
	"US": layoutMDY,
	"PH": layoutMDY,

	"GB": layoutDMY,
	"IE": layoutDMY,
	"AU": layoutDMY,
	"NZ": layoutDMY,
	"IN": layoutDMY,
	"ZA": layoutDMY,
	"FR": layoutDMY,
	"ES": layoutDMY,
	"IT": layoutDMY,
	"NL": layoutDMY,
	"BE": layoutDMY,
	"PT": layoutDMY,
	"BR": layoutDMY,

	"DE": layoutDMYDot,
	"AT": layoutDMYDot,
	"CH": layoutDMYDot,

	"JP": layoutYMD,
	"CN": layoutYMD,
	"KR": layoutYMD,
	"CA": layoutYMD,
}

var dateLayoutsByLang = map[string]string{
	"en": layoutMDY,
	"de": layoutDMYDot,
	"fr": layoutDMY,
	"es": layoutDMY,
	"it": layoutDMY,
	"nl": layoutDMY,
	"pt": layoutDMY,
	"ja": layoutYMD,
	"zh": layoutYMD,
	"ko": layoutYMD,
}

var twelveHourRegions = map[string]bool{
	"US": true,
	"PH": true,
	"AU": true,
	"NZ": true,
	"IN": true,
}
