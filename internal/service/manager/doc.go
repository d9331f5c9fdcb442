// Package manager opens the sun bed collection at startup and runs the
// user-facing commands against it.
//
// Open implements the startup contract (load, recreate an empty data file on
// failure, load again). Provider hands the single collection to every caller.
package manager
