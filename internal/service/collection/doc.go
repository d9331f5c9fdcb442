// Package collection holds the ordered sun bed collection.
//
// Collection is the only gateway for changing beds. Each mutation writes the
// whole collection through the repository and reports the outcome in a
// SaveResult instead of failing the call.
package collection
