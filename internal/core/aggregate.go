package core

// Summarize counts records per status. It has no side effects.
func Summarize(records []ApplicationRecord) Summary {
	summary := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusInterview:
			summary.Interviews++
		case StatusOffer:
			summary.Offers++
		case StatusRejected:
			summary.Rejections++
		}
	}
	return summary
}
