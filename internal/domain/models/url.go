package models

// URLAnalysis is the structural reputation verdict for a single URL
type URLAnalysis struct {
	URL            string   `json:"url"`
	Domain         string   `json:"domain"`
	Subdomain      string   `json:"subdomain"`
	TLD            string   `json:"tld"`
	IsHTTPS        bool     `json:"is_https"`
	IsShortened    bool     `json:"is_shortened"`
	IsTrusted      bool     `json:"is_trusted"`
	RiskScore      int      `json:"risk_score"`
	RiskFactors    []string `json:"risk_factors"`
	IsSuspicious   bool     `json:"is_suspicious"`
	Error          string   `json:"error,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// URLErrorScore is the conservative score given to a URL that could not be analyzed
const URLErrorScore = 50

// NewURLErrorResult builds the placeholder result for a URL that failed analysis
func NewURLErrorResult(url string, err error) URLAnalysis {
	return URLAnalysis{
		URL:          url,
		RiskScore:    URLErrorScore,
		RiskFactors:  []string{},
		IsSuspicious: true,
		Error:        err.Error(),
	}
}
