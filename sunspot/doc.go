// Package sunspot resolves a city name or a latitude/longitude pair plus an
// optional date into sunrise/sunset data.
//
// A Resolver consults a time-bucketed cache first and only falls back to a
// geocoding provider and an upstream sun-times provider on a miss. Cache keys
// embed the city label, canonical coordinates and date, so a request by city
// can be answered from an entry first populated by coordinates and vice
// versa through wildcard shortcut scans.
//
// Every branch the resolver takes is reported as a Decision: logged, added
// to the active span as an event and counted in metrics.
package sunspot
