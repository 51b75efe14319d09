package viewmodel

import (
	"math"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/i18n"
)

// Reduce applies one outcome to the current state. It is pure: the result
// depends only on its arguments, and current is never modified.
func Reduce(current State, o domain.Outcome, res Resources) State {
	switch o.Kind {
	case domain.OutcomeRefreshing:
		next := current.withoutEvents()
		next.Refreshing = o.Refreshing
		return next
	case domain.OutcomeSuccess:
		return fromSnapshot(current, o.Snapshot, res)
	case domain.OutcomeError:
		next := fromSnapshot(current, o.Snapshot, res)
		next.Events = []Event{errorEvent(o.Err, res)}
		return next
	default:
		return current.withoutEvents()
	}
}

// fromSnapshot renders snap over current. A nil snapshot yields a blank
// no-data state.
func fromSnapshot(current State, snap *domain.WeatherSnapshot, res Resources) State {
	if snap == nil {
		return InitialState()
	}

	next := current.withoutEvents()
	next.Location = ""
	if snap.Name != "" {
		next.Location = res.String(i18n.KeyLocation, snap.Name)
	}
	next.Condition, next.Icon = "", ""
	if c, ok := snap.PrimaryCondition(); ok {
		next.Condition = c.Summary
		next.Icon = c.Icon
	}
	next.Temperature = res.String(i18n.KeyTemperature, roundToInt(snap.Temperature))
	next.WindSpeed = res.String(i18n.KeyWindSpeed, roundToInt(snap.Wind.Speed))
	next.WindDirection = domain.DegreesToHeading(snap.Wind.Degrees)
	next.Updated = res.String(i18n.KeyLastUpdated, res.FormatDateTime(snap.ObservedAt()))
	next.NoData = false
	return next
}

func errorEvent(err error, res Resources) Event {
	if domain.IsNoConnection(err) {
		return Event{Kind: EventNoConnection, Message: res.String(i18n.KeyNoInternet)}
	}
	return Event{Kind: EventFailure, Message: res.String(i18n.KeySomethingWentWrong)}
}

// roundToInt rounds half up: 2.5 → 3, -2.5 → -2.
func roundToInt(v float64) int {
	return int(math.Floor(v + 0.5))
}
