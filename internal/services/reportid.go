package services

import (
	"crypto/rand"
	"fmt"
	"time"
)

// referenceAlphabet holds the characters usable in the random suffix of a
// report reference code.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReportID produces a fresh reference code of the form
// MK-<year>-<4 uppercase alphanumerics>, e.g. MK-2026-7QX3. The code is the
// submitter's only durable handle on their submission; there is no
// server-side lookup table, so it is generated, returned and emailed, never
// stored.
func GenerateReportID(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reference code: %w", err)
	}
	suffix := make([]byte, 4)
	for i, b := range buf {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("MK-%d-%s", now.Year(), suffix), nil
}

// dutchMonths maps time.Month to its Dutch name for the date label embedded
// in the emails.
var dutchMonths = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// DateLabel formats a timestamp the way the emails display it: "31 augustus 2026".
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), dutchMonths[t.Month()-1], t.Year())
}
