package orchestrator

import (
	"fmt"
	"strings"
)

// Persona holds the business identity woven into the system prompt and the
// fixed replies. All fields are configurable; the zero value is completed
// with the production defaults by [Persona.withDefaults].
type Persona struct {
	// AgentName is the assistant's display name (e.g., "Randy Miller").
	AgentName string `yaml:"agent_name"`

	// BusinessName is the company name used in the prompt and replies.
	BusinessName string `yaml:"business_name"`

	// BusinessDescription is a one-line description of what the company does.
	BusinessDescription string `yaml:"business_description"`

	// ServiceNoun is the short noun phrase used in safety replies
	// ("a genuine <noun> need"), e.g. "dumpster rental".
	ServiceNoun string `yaml:"service_noun"`

	// Phone is the direct business line offered in fallback and safety
	// replies.
	Phone string `yaml:"phone"`

	// FAQURL and GuidelinesURL are supporting links included in the prompt.
	FAQURL        string `yaml:"faq_url"`
	GuidelinesURL string `yaml:"guidelines_url"`

	// SystemPrompt, when set, replaces the generated prompt entirely.
	SystemPrompt string `yaml:"system_prompt"`
}

// DefaultPersona returns the production persona.
func DefaultPersona() Persona {
	return Persona{
		AgentName:           "Randy Miller",
		BusinessName:        "Little Junkers",
		BusinessDescription: "a local dumpster rental service",
		ServiceNoun:         "dumpster rental",
		Phone:               "470-548-4733",
		FAQURL:              "https://www.littlejunkersllc.com/faq",
		GuidelinesURL:       "https://www.littlejunkersllc.com/do-s-don-ts",
	}
}

// withDefaults fills empty fields from [DefaultPersona].
func (p Persona) withDefaults() Persona {
	def := DefaultPersona()
	if p.AgentName == "" {
		p.AgentName = def.AgentName
	}
	if p.BusinessName == "" {
		p.BusinessName = def.BusinessName
	}
	if p.BusinessDescription == "" {
		p.BusinessDescription = def.BusinessDescription
	}
	if p.ServiceNoun == "" {
		p.ServiceNoun = def.ServiceNoun
	}
	if p.Phone == "" {
		p.Phone = def.Phone
	}
	if p.FAQURL == "" {
		p.FAQURL = def.FAQURL
	}
	if p.GuidelinesURL == "" {
		p.GuidelinesURL = def.GuidelinesURL
	}
	return p
}

// buildSystemPrompt renders the persona and catalog into the system prompt.
// When Persona.SystemPrompt is set it is used verbatim.
func buildSystemPrompt(p Persona, c Catalog) string {
	if p.SystemPrompt != "" {
		return p.SystemPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %q, the friendly, helpful assistant for %s — %s.\n",
		p.AgentName, p.BusinessName, p.BusinessDescription)
	b.WriteString("Tone: warm, professional, conversational. If the user mentions a loss or bereavement, begin with a brief, sincere condolence (one sentence) before helping.\n\n")

	b.WriteString("MISSION\n")
	b.WriteString("- Help the customer choose the right product for their project.\n")
	b.WriteString("- Provide booking links wrapped in < > brackets.\n")
	b.WriteString("- Collect first name and either phone OR email (not both unless they volunteer it).\n")
	b.WriteString("- After collecting name + (phone OR email), you may ask ONCE for delivery address if not provided.\n")
	b.WriteString("- Never get stuck in loops: ask for contact info at most twice total.\n\n")

	b.WriteString("REFUSAL POLICY\n")
	fmt.Fprintf(&b, "- If they refuse to provide contact info twice, stop asking and end with:\n  \"No problem — I completely understand! You can book directly here anytime: <%s> or call us at %s.\"\n",
		c.OverviewURL, p.Phone)
	b.WriteString("- NEVER say \"someone will follow up\" if you don't have their contact information.\n\n")

	b.WriteString("PRICING/GUARDRAILS\n")
	fmt.Fprintf(&b, "- Do not quote prices not shown on the official pages. If asked, send the correct link.\n- When unsure, direct to product pages or phone: %s.\n\n", p.Phone)

	b.WriteString("LINKS (wrap in < >):\n")
	for _, tier := range c.Tiers {
		fmt.Fprintf(&b, "- %s: <%s>\n", tier.Label(), tier.URL)
	}
	fmt.Fprintf(&b, "- All products: <%s>\n", c.OverviewURL)
	if p.FAQURL != "" {
		fmt.Fprintf(&b, "- FAQ: <%s>\n", p.FAQURL)
	}
	if p.GuidelinesURL != "" {
		fmt.Fprintf(&b, "- Do's & Don'ts: <%s>\n", p.GuidelinesURL)
	}
	b.WriteString("\n")

	b.WriteString("FORMATTING RULES\n")
	b.WriteString("- Wrap all URLs in < > brackets.\n")
	b.WriteString("- Never use [text](url) markdown or add punctuation immediately after a URL.\n")
	b.WriteString("- Keep replies under 100 words.\n")
	b.WriteString("- Vary greetings naturally - don't always say the same thing.\n")

	return b.String()
}
