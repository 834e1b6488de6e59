package pics

// ProcessingOutcome is what a restore run did with a single file.
type ProcessingOutcome string

const (
	OutcomeUpdated       ProcessingOutcome = "updated"
	OutcomeAlreadyTagged ProcessingOutcome = "skipped_already_tagged"
	OutcomeInvalidName   ProcessingOutcome = "skipped_invalid_name"
	OutcomeInvalidData   ProcessingOutcome = "skipped_invalid_data"
	OutcomeExcluded      ProcessingOutcome = "excluded_by_extension"
	OutcomeFailed        ProcessingOutcome = "failed"
)

// Summary reports the result of a restore run.
type Summary struct {
	// Total is the number of enumerated files, included and excluded.
	Total int
	// Counts holds the number of files per outcome.
	Counts map[ProcessingOutcome]int
	// Excluded lists the excluded files relative to the media directory.
	Excluded []string
}

func newSummary() Summary {
	return Summary{Counts: make(map[ProcessingOutcome]int)}
}

func (s *Summary) record(outcome ProcessingOutcome) {
	s.Counts[outcome]++
}

// Processed returns the number of files with an allowed extension.
func (s Summary) Processed() int {
	return s.Total - len(s.Excluded)
}
