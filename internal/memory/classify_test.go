package memory

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		location string
		want     ContextTag
	}{
		{"shopping keyword", "Grocery shopping", "", ContextShopping},
		{"buy keyword", "Buy birthday gift", "", ContextShopping},
		{"meeting keyword", "Team meeting", "", ContextMeeting},
		{"interview", "Interview with candidate", "", ContextMeeting},
		{"health", "Dentist appointment", "", ContextHealth},
		{"gym", "Morning gym session", "", ContextHealth},
		{"social", "Dinner with friends", "", ContextSocial},
		{"work", "Project review", "", ContextWork},
		{"case insensitive", "GROCERY SHOPPING", "", ContextShopping},
		{"location matches", "Errand run", "Apple Store", ContextShopping},
		{"no match", "Random thing", "", ContextGeneral},
		{"empty input", "", "", ContextGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.title, tt.location); got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.title, tt.location, got, tt.want)
			}
		})
	}
}

// Both shopping and meeting keywords are present; the earlier rule wins.
func TestClassifyTieBreak(t *testing.T) {
	if got := Classify("shopping meeting", ""); got != ContextShopping {
		t.Errorf("Classify(\"shopping meeting\") = %q, want %q", got, ContextShopping)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	first := Classify("Coffee with Sam", "downtown")
	for i := 0; i < 10; i++ {
		if got := Classify("Coffee with Sam", "downtown"); got != first {
			t.Fatalf("Classify is not deterministic: %q then %q", first, got)
		}
	}
}
