// Package popularbooks implements the Popular Books query: books ranked by how often their copies
// were issued.
package popularbooks
