// Package params parses repeated key=value command-line flags such as
// --label column=label and --supporting label=path.
package params
