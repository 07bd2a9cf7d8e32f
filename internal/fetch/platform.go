package fetch

import (
	"net/url"
	"strings"
)

// Platform describes where the job text lives on a known job board.
type Platform struct {
	Name    string
	hosts   []string
	Content []string
	Noise   []string
}

var commonNoise = []string{
	"form", "#application-form", ".application-form", ".apply-button-container",
	".eeo-statement", ".eeo-section", ".voluntary-disclosure", ".legal-disclosure",
	".social-share", ".share-buttons", ".cookie-consent", ".gdpr-notice",
}

var genericContent = []string{
	".job-description", "#job-description", ".job-content", ".job-details",
	".posting-content", "[data-testid='job-description']",
	"main", "article", ".content", "#content",
}

var platforms = []Platform{
	{
		Name:    "greenhouse",
		hosts:   []string{"greenhouse.io"},
		Content: []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		Noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		Name:    "lever",
		hosts:   []string{"lever.co"},
		Content: []string{".posting-page", ".posting-description", ".content"},
		Noise:   []string{".apply-section", ".posting-apply"},
	},
	{
		Name:    "workday",
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		Content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		Noise:   []string{"[data-automation-id='applyButton']"},
	},
	{
		Name:    "ashby",
		hosts:   []string{"ashbyhq.com"},
		Content: []string{"[class*='_descriptionText']", "main"},
	},
}

// Detect returns the platform serving rawURL, or a generic platform.
func Detect(rawURL string) Platform {
	generic := Platform{Name: "generic", Content: genericContent, Noise: commonNoise}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return generic
	}
	host := strings.ToLower(parsed.Hostname())

	for _, p := range platforms {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				p.Noise = append(append([]string{}, commonNoise...), p.Noise...)
				return p
			}
		}
	}
	return generic
}
