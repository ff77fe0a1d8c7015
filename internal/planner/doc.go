// Package planner turns a classification into a destination path under the
// matching category root and performs the move.
//
// Layouts:
//
//	music  Artist/Album[/Disc N]/[disc-]NN - Title.ext
//	       Artist/Album[/Disc N]/Artist - Title.ext   (no track number)
//	tv     Series (Year)/Series - SxxEyy[ - Episode Title].ext
//	movie  Title (Year).ext
//	other  OriginalName
//
// Kinds whose category root is unset fall back to the other root. Every
// planned path is checked to stay under its root.
package planner
