// Package shell is the imperative shell around the circulation core.
//
// It maps domain events to and from storable events, carries event metadata, classifies
// failed appends, retries Busy operations for outer layers and provides the metric, span
// and log helpers the observable wrappers build on.
package shell
