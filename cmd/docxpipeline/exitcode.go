package main

import "github.com/mesocyclon/docxpipeline/internal/auditor"

// Exit codes per the documented status mapping. process and batch return
// these; dry-run exits with exitInvalidPlan when extraction or planning
// fails and exitError on a config error; status and config use
// exitError/exitSuccess only, since they never reach a terminal run status.
const (
	exitSuccess          = 0
	exitError            = 1
	exitFailedValidation = 2
	exitRollback         = 3
	exitInvalidPlan      = 4
	exitUnknown          = 5
)

func exitCodeFor(status auditor.Status) int {
	switch status {
	case auditor.StatusSuccess:
		return exitSuccess
	case auditor.StatusFailedValidation:
		return exitFailedValidation
	case auditor.StatusRollback:
		return exitRollback
	case auditor.StatusInvalidPlan:
		return exitInvalidPlan
	default:
		return exitUnknown
	}
}
