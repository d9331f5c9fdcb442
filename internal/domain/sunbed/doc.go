// Package sunbed contains the core domain type of the application.
//
// It defines SunBed (one numbered bed with a booked flag) and Sequence, the
// id source that hands out fresh beds. Clone helpers avoid leaking internal references.
package sunbed
