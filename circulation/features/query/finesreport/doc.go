// Package finesreport implements the Fines Report query: fines charged on returns within an
// optional time window, in total and per borrower.
package finesreport
