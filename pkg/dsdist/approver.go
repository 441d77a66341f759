package dsdist

import "context"

// PushSummary describes a push waiting for approval.
type PushSummary struct {
	Name        string
	Destination string   // Parsed destination, credentials removed
	Labels      []string // Group labels in manifest order
	Files       int      // Distinct data files to store
	Bytes       int64    // Total size of those files
}

// Approver handles user interaction before a package leaves the machine.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the dataset name for confirmation
type Approver interface {
	// RequestApproval asks whether the push described by summary may go
	// ahead. It returns false without error when the user declines.
	RequestApproval(ctx context.Context, summary PushSummary) (bool, error)
}

// Summarize counts the distinct files of pkg for an approval prompt.
func Summarize(pkg *Package, destination string) PushSummary {
	s := PushSummary{Name: pkg.Name, Destination: destination, Labels: pkg.Labels}
	seen := make(map[string]struct{}, len(pkg.Entries))
	for _, e := range pkg.Entries {
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		s.Files++
		s.Bytes += e.SizeBytes
	}
	return s
}
