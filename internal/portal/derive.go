package portal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReferralSuffix is appended to every derived referral code.
const ReferralSuffix = "2025"

// PodiumSize is the number of leaderboard entries given podium treatment.
const PodiumSize = 3

// DefaultIcon is used for achievements whose icon key is unknown.
const DefaultIcon = "user"

var knownIcons = map[string]struct{}{
	"user":   {},
	"star":   {},
	"trophy": {},
	"crown":  {},
}

var donationPrinter = message.NewPrinter(language.English)

// ReferralCode lowercases name, strips all whitespace and appends ReferralSuffix.
func ReferralCode(name string) string {
	var b strings.Builder
	b.Grow(len(name) + len(ReferralSuffix))
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	b.WriteString(ReferralSuffix)
	return b.String()
}

// Initials takes the first character of every whitespace separated token, uppercased.
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// IconFor resolves an achievement icon key, falling back to DefaultIcon.
func IconFor(key string) string {
	if _, ok := knownIcons[key]; ok {
		return key
	}
	return DefaultIcon
}

// FormatDonations renders an amount in rupees with digit grouping, e.g. ₹4,500.
func FormatDonations(amount int) string {
	return donationPrinter.Sprintf("₹%d", amount)
}

// Partition separates unlocked achievements from the next one to chase.
type Partition struct {
	Unlocked   []Achievement
	NextLocked *Achievement
}

// PartitionAchievements keeps catalog order. NextLocked is the first locked entry in that order.
func PartitionAchievements(catalog []Achievement) Partition {
	p := Partition{Unlocked: make([]Achievement, 0, len(catalog))}
	for i := range catalog {
		a := catalog[i]
		if a.IsUnlocked {
			p.Unlocked = append(p.Unlocked, a)
			continue
		}
		if p.NextLocked == nil {
			next := a
			p.NextLocked = &next
		}
	}
	return p
}

// UnlockProgress counts unlocked achievements against the catalog size.
type UnlockProgress struct {
	Unlocked int `json:"unlocked"`
	Total    int `json:"total"`
}

// Progress reports how many achievements of the catalog are unlocked.
func Progress(catalog []Achievement) UnlockProgress {
	progress := UnlockProgress{Total: len(catalog)}
	for _, a := range catalog {
		if a.IsUnlocked {
			progress.Unlocked++
		}
	}
	return progress
}

// SplitLeaderboard returns the first PodiumSize entries and the rest, both in original order.
// Short leaderboards put everything on the podium.
func SplitLeaderboard[T any](entries []T) (podium, rest []T) {
	n := min(PodiumSize, len(entries))
	podium = append(make([]T, 0, n), entries[:n]...)
	rest = append(make([]T, 0, len(entries)-n), entries[n:]...)
	return podium, rest
}

// RankedEntry is a leaderboard row with presentation fields resolved.
type RankedEntry struct {
	LeaderboardEntry
	Initials      string `json:"initials"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}

// HighlightCurrentUser flags entries whose name equals sessionName exactly. Names are not
// normalized, so case or whitespace differences miss the match.
func HighlightCurrentUser(entries []LeaderboardEntry, sessionName string) []RankedEntry {
	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{
			LeaderboardEntry: e,
			Initials:         Initials(e.Name),
			IsCurrentUser:    sessionName != "" && e.Name == sessionName,
		}
	}
	return out
}
