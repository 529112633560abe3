package cui

import (
	"testing"

	"fintel/internal/errs"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain digits", raw: "12345678", want: "12345678"},
		{name: "ro prefix with space", raw: "RO 12345678", want: "12345678"},
		{name: "ro prefix attached", raw: "RO12345678", want: "12345678"},
		{name: "lowercase prefix", raw: "ro12345678", want: "12345678"},
		{name: "cui label with colon", raw: "CUI: 445566", want: "445566"},
		{name: "cif label", raw: "CIF 9900", want: "9900"},
		{name: "embedded punctuation", raw: "123-456-78", want: "12345678"},
		{name: "surrounding whitespace", raw: "  77889  ", want: "77889"},
		{name: "minimum length", raw: "12", want: "12"},
		{name: "maximum length", raw: "1234567890", want: "1234567890"},
		{name: "too short", raw: "1", wantErr: true},
		{name: "too long", raw: "12345678901", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   ", wantErr: true},
		{name: "no digits at all", raw: "RO", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.raw, got)
				}
				if !errs.IsValidation(err) {
					t.Errorf("Normalize(%q) error = %v, want ValidationError", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractCandidates(t *testing.T) {
	text := "SC EXEMPLU SRL, CUI: 12345678, Cod fiscal 9900 si RO445566."

	got := ExtractCandidates(text, "https://www.mfinante.ro/agenti")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(got), got)
	}

	wantCUIs := []string{"12345678", "9900", "445566"}
	for i, want := range wantCUIs {
		if got[i].CUI != want {
			t.Errorf("candidate[%d].CUI = %q, want %q", i, got[i].CUI, want)
		}
		if got[i].Confidence != ConfidenceVeryHigh {
			t.Errorf("candidate[%d].Confidence = %v, want very_high", i, got[i].Confidence)
		}
		if got[i].Source != "https://www.mfinante.ro/agenti" {
			t.Errorf("candidate[%d].Source = %q", i, got[i].Source)
		}
	}
}

func TestExtractCandidatesNoMatch(t *testing.T) {
	if got := ExtractCandidates("no identifiers here, just the year 2024", "https://example.com"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestConfidenceBySource(t *testing.T) {
	tests := []struct {
		source string
		want   Confidence
	}{
		{"https://www.mfinante.ro/persoane", ConfidenceVeryHigh},
		{"https://portal.onrc.ro/firma", ConfidenceVeryHigh},
		{"https://static.anaf.ro/anaf/internet", ConfidenceVeryHigh},
		{"https://targetare.ro/company/x", ConfidenceHigh},
		{"https://www.targetare.ro/company/x", ConfidenceHigh},
		{"https://listafirme.example.com/x", ConfidenceMedium},
		{"", ConfidenceMedium},
	}
	for _, tt := range tests {
		got := ExtractCandidates("CUI 12345678", tt.source)
		if len(got) != 1 {
			t.Fatalf("source %q: expected one candidate, got %d", tt.source, len(got))
		}
		if got[0].Confidence != tt.want {
			t.Errorf("source %q: confidence = %v, want %v", tt.source, got[0].Confidence, tt.want)
		}
	}
}

func TestExtractCandidatesDemoted(t *testing.T) {
	got := ExtractCandidatesDemoted("CUI 12345678", "https://www.mfinante.ro/x")
	if len(got) != 1 {
		t.Fatalf("expected one candidate, got %d", len(got))
	}
	if got[0].Confidence != ConfidenceHigh {
		t.Errorf("demoted confidence = %v, want high", got[0].Confidence)
	}

	low := ExtractCandidatesDemoted("CUI 12345678", "https://random.example.com")
	if low[0].Confidence != ConfidenceLow {
		t.Errorf("demoted medium source = %v, want low", low[0].Confidence)
	}
}

func TestDedupeBest(t *testing.T) {
	in := []Candidate{
		{CUI: "111111", Confidence: ConfidenceMedium},
		{CUI: "222222", Confidence: ConfidenceLow},
		{CUI: "111111", Confidence: ConfidenceVeryHigh},
		{CUI: "222222", Confidence: ConfidenceLow},
	}
	got := DedupeBest(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(got))
	}
	if got[0].CUI != "111111" || got[0].Confidence != ConfidenceVeryHigh {
		t.Errorf("first = %+v, want 111111 at very_high", got[0])
	}
	if got[1].CUI != "222222" || got[1].Confidence != ConfidenceLow {
		t.Errorf("second = %+v, want 222222 at low", got[1])
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		c    Confidence
		want string
	}{
		{ConfidenceVeryHigh, "very_high"},
		{ConfidenceHigh, "high"},
		{ConfidenceMedium, "medium"},
		{ConfidenceLow, "low"},
	}
	for _, tt := range tests {
		if got := tt.c.Label(); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", int(tt.c), got, tt.want)
		}
	}
}
