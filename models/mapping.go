package models

// Pure, total mappings between the UI vocabulary (Report) and the storage
// vocabulary (Issue). The category mapping collapses many-to-one and
// under_review has no storage equivalent, so neither direction is a perfect
// inverse of the other; the lossy cases are deliberate projections, not bugs.

// CategoryToIssue maps a UI category onto its storage category.
func CategoryToIssue(c ReportCategory) IssueCategory {
	switch c {
	case CategoryPothole, CategoryRoadDamage:
		return IssueCategoryRoad
	case CategoryStreetlight:
		return IssueCategoryElectricity
	case CategoryGarbage, CategoryFlooding, CategorySignDamage:
		return IssueCategoryWaste
	default:
		return IssueCategoryOther
	}
}

// CategoryFromIssue maps a storage category back to its canonical UI
// category. Collapsed categories come back as the canonical representative
// (road -> pothole, waste -> garbage), so the round trip is only exact for
// categories that map uniquely.
func CategoryFromIssue(c IssueCategory) ReportCategory {
	switch c {
	case IssueCategoryRoad:
		return CategoryPothole
	case IssueCategoryElectricity:
		return CategoryStreetlight
	case IssueCategoryWaste:
		return CategoryGarbage
	default:
		return CategoryOther
	}
}

// SeverityToPriority maps UI severity onto storage priority (identity).
func SeverityToPriority(s ReportSeverity) IssuePriority {
	switch s {
	case SeverityLow:
		return IssuePriorityLow
	case SeverityHigh:
		return IssuePriorityHigh
	default:
		return IssuePriorityMedium
	}
}

// PriorityToSeverity maps storage priority back to UI severity (identity).
func PriorityToSeverity(p IssuePriority) ReportSeverity {
	switch p {
	case IssuePriorityLow:
		return SeverityLow
	case IssuePriorityHigh:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// StatusToIssue maps a UI status onto a storage status. under_review has no
// storage equivalent and is coerced to reported.
func StatusToIssue(s ReportStatus) IssueStatus {
	switch s {
	case StatusInProgress:
		return IssueStatusInProgress
	case StatusResolved:
		return IssueStatusResolved
	case StatusClosed:
		return IssueStatusClosed
	default:
		return IssueStatusReported
	}
}

// StatusFromIssue maps a storage status back to the UI status (identity).
func StatusFromIssue(s IssueStatus) ReportStatus {
	switch s {
	case IssueStatusInProgress:
		return StatusInProgress
	case IssueStatusResolved:
		return StatusResolved
	case IssueStatusClosed:
		return StatusClosed
	default:
		return StatusReported
	}
}
