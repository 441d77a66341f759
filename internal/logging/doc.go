// Package logging implements dsdist.Logger.
//
// ConsoleLogger writes to stderr or any io.Writer and prints Verbose lines
// only when asked to. WithPrefix tags the lines of one component, such as a
// packaging backend. NullLogger is for tests. All three are safe for
// concurrent use.
package logging
