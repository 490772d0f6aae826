package notification

import (
	"strings"
	"testing"
)

func TestDistributionMessageByLanguage(t *testing.T) {
	tests := []struct {
		name      string
		language  string
		capital   float64
		profit    float64
		wantTitle string
		wantIn    string
	}{
		{
			name:      "english with profit",
			language:  "en",
			capital:   500,
			profit:    50,
			wantTitle: "Profit distribution",
			wantIn:    "50.00 profit",
		},
		{
			name:      "english capital only",
			language:  "en",
			capital:   500,
			wantTitle: "Capital return",
			wantIn:    "500.00 returned capital",
		},
		{
			name:      "arabic with profit",
			language:  "ar",
			capital:   500,
			profit:    50,
			wantTitle: "توزيع أرباح",
			wantIn:    "أرباح",
		},
		{
			name:      "arabic capital only",
			language:  "ar",
			capital:   500,
			wantTitle: "استرداد رأس المال",
			wantIn:    "رأس المال",
		},
		{
			name:      "unknown language falls back to english",
			language:  "fr",
			capital:   500,
			profit:    50,
			wantTitle: "Profit distribution",
			wantIn:    "profit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message := distributionMessage(tt.language, "Jeddah Port Expansion", tt.capital, tt.profit)
			if title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, title)
			}
			if !strings.Contains(message, tt.wantIn) {
				t.Errorf("expected message to contain %q, got %q", tt.wantIn, message)
			}
			if !strings.Contains(message, "Jeddah Port Expansion") {
				t.Errorf("expected message to name the deal, got %q", message)
			}
		})
	}
}
