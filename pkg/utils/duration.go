package utils

import "fmt"

// FormatDuration formats seconds into HH:MM:SS format
func FormatDuration(totalSeconds int64) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatMinutes formats seconds as whole minutes for embed fields
func FormatMinutes(seconds float64) string {
	return fmt.Sprintf("%d min", int64(seconds)/60)
}
