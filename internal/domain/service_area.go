package domain

import "strings"

// Region name fragments the business serves. Order only decides which keyword
// is reported as the match, never whether a match exists.
var serviceAreaKeywords = [...]string{
	"일산", "파주", "시흥",
	"안산", "군포", "고양",
	"강화", "영종",
	"서울", "수원", "화성",
	"용인", "안양", "과천",
	"광명", "의왕", "의정부",
	"구리", "성남", "남양주",
	"인천",
}

// ServiceAreaKeywords returns a copy of the serviceable region fragments.
func ServiceAreaKeywords() []string {
	out := make([]string, len(serviceAreaKeywords))
	copy(out, serviceAreaKeywords[:])
	return out
}

// AreaText is the string classified for a resolution: resolved label and raw query.
func AreaText(label, raw string) string {
	return label + " " + raw
}

// MatchServiceArea returns the first keyword contained in text.
// Matching is case-sensitive substring containment.
func MatchServiceArea(text string) (string, bool) {
	for _, k := range serviceAreaKeywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

// InServiceArea reports whether text contains any serviceable region fragment.
func InServiceArea(text string) bool {
	_, ok := MatchServiceArea(text)
	return ok
}
