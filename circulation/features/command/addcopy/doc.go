// Package addcopy registers a physical copy in circulation as Available.
package addcopy
