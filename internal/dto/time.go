package dto

import "time"

const DateLayout = "2006-01-02"

// mustDate parses a value already checked by the datetime binding tag.
func mustDate(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func optionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := mustDate(*s)
	return &t
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
