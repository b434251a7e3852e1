// Package returnbook implements the Return operation: the open issue is closed with its fine and
// the copy is released, or marked Damaged or Lost when it comes back that way.
//
// A return is addressed either by copy or by issue id. The boundary is every event of the copy.
package returnbook
