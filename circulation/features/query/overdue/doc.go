// Package overdue implements the Overdue query: every open issue past its due date as of a given
// day, with the fine it would carry if returned on that day.
package overdue
