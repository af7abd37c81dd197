// Package dates turns free-form date expressions into canonical calendar days.
//
// Resolution is a pure function of the wall clock and the input string:
// empty input and "today" map to the current day, "yesterday" and
// "tomorrow" shift it by one, and anything else is handed to a general
// human date parser. The output is always YYYY-MM-DD.
package dates
