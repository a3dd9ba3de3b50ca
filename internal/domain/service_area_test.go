package domain

import "testing"

func TestInServiceArea(t *testing.T) {
	tests := []struct {
		name  string
		label string
		raw   string
		want  bool
	}{
		{"company address", "인천 서구 청마로34번길 32-9", "인천 서구 청마로34번길 32-9", true},
		{"raw only", "", "서울 강남구", true},
		{"label only", "경기 고양시 일산동구 장항동", "호수공원", true},
		{"jeju", "제주특별자치도 제주시 한라산", "제주 한라산", false},
		{"empty", "", "", false},
		{"busan", "부산 해운대구", "해운대", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InServiceArea(AreaText(tt.label, tt.raw)); got != tt.want {
				t.Errorf("InServiceArea(%q, %q) = %v, want %v", tt.label, tt.raw, got, tt.want)
			}
		})
	}
}

func TestInServiceAreaMonotonic(t *testing.T) {
	base := AreaText("제주특별자치도 제주시", "제주 한라산")
	if InServiceArea(base) {
		t.Fatalf("precondition: %q should be out of service", base)
	}

	for _, k := range ServiceAreaKeywords() {
		if !InServiceArea(base + k) {
			t.Errorf("appending %q did not flip outcome to in-service", k)
		}
	}
}

func TestMatchServiceAreaFirstWins(t *testing.T) {
	// Both 서울 and 인천 occur; 서울 precedes 인천 in the keyword list.
	k, ok := MatchServiceArea("인천 서울")
	if !ok {
		t.Fatal("expected a match")
	}
	if k != "서울" {
		t.Errorf("matched %q, want 서울", k)
	}
}

func TestServiceAreaKeywordsIsCopy(t *testing.T) {
	ks := ServiceAreaKeywords()
	if len(ks) != 21 {
		t.Fatalf("len = %d, want 21", len(ks))
	}
	ks[0] = "제주"
	if InServiceArea("제주") {
		t.Error("mutating the returned slice changed the keyword set")
	}
}

func TestNormalizeQuery(t *testing.T) {
	decomposed := "인천" // 인천 as conjoining jamo
	if got := NormalizeQuery("  " + decomposed + "   서구\t"); got != "인천 서구" {
		t.Errorf("NormalizeQuery = %q, want %q", got, "인천 서구")
	}
	if got := NormalizeQuery(" \n\t "); got != "" {
		t.Errorf("NormalizeQuery(blank) = %q, want empty", got)
	}
}
