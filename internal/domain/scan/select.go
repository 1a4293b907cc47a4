package scan

// PrimaryLanguage picks the winning language from a detection set.
// Priority order dominates: its first detected entry wins regardless of
// confidence. Without a priority hit the highest confidence wins, and ties
// break to the earliest language in table declaration order.
func PrimaryLanguage(det *Detections, priority []string) string {
	if det.Len() == 0 {
		return ""
	}
	for _, lang := range priority {
		if _, ok := det.Get(lang); ok {
			return lang
		}
	}
	best := ""
	bestConfidence := -1.0
	for _, lang := range det.Languages() {
		m, _ := det.Get(lang)
		if m.Confidence > bestConfidence {
			best = lang
			bestConfidence = m.Confidence
		}
	}
	return best
}
