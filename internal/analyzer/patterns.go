// Package analyzer extracts structured signals from a chat transcript:
// contact information (name, phone, email, address), safety flags, and
// reaction cues (escalation, closing, bereavement).
//
// Extraction is a pure function of the transcript — the same input always
// yields the same signals, and nothing is cached between calls. Contact
// signals are read from user turns only; assistant turns are scanned solely
// for ask counters and the lead-confirmed idempotency phrase.
package analyzer

import "regexp"

// PatternVersion identifies the active pattern set. Bump when any pattern or
// the name exclusion list changes, so that stored leads can be correlated
// with the extraction rules that produced them.
const PatternVersion = "2026-08"

// PatternSet is the named, versioned collection of extraction patterns.
// One named pattern per signal so tests can target each independently.
type PatternSet struct {
	// Version identifies this pattern revision.
	Version string

	// Phone matches North American numbers with space, dot, or dash
	// separators in 3-3-4 grouping. Submatches are the three digit groups.
	Phone *regexp.Regexp

	// Email matches the standard local@domain.tld shape.
	Email *regexp.Regexp

	// Address matches a leading house number followed by a street name with a
	// recognised street-type suffix.
	Address *regexp.Regexp

	// Mild matches lower-severity profanity.
	Mild *regexp.Regexp

	// Severe matches violence, self-harm, and crime terms.
	Severe *regexp.Regexp

	// Escalation matches requests for a human and expressions of frustration.
	Escalation *regexp.Regexp

	// Closing matches short end-of-conversation acknowledgements. Anchored:
	// a turn is only a closing signal when it consists of the phrase alone.
	Closing *regexp.Regexp

	// Bereavement matches loss-of-family cues that call for a condolence.
	Bereavement *regexp.Regexp

	// ContactAsk matches assistant turns that ask for name/phone/email.
	ContactAsk *regexp.Regexp

	// AddressAsk matches assistant turns that ask for a delivery address.
	AddressAsk *regexp.Regexp

	// LeadConfirmed matches the fixed assistant phrases emitted after a lead
	// dispatch; scanning for them is the only idempotency mechanism available
	// in a stateless design.
	LeadConfirmed *regexp.Regexp

	// NameExclusions suppresses capitalized tokens that are service nouns,
	// greetings, or local place names rather than personal names.
	NameExclusions map[string]struct{}
}

// nameToken matches a capitalized-word candidate for the name heuristic.
// Case-sensitive: sentence-case words qualify, shouted or lowercase ones do
// not. This is a deliberately weak heuristic, not NER; the model-tier
// extractor exists because of it.
var nameToken = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// defaultExclusions lists tokens that commonly start sentences or name the
// service/locality and must never be taken for a customer name.
var defaultExclusions = []string{
	"yard", "dumpster", "atlanta", "peachtree", "fairburn", "fayetteville",
	"newnan", "tyrone", "need", "want", "help", "rental", "rent", "delivery",
	"hi", "hey", "hello", "thanks", "thank", "yes", "no", "ok", "okay",
	"what", "when", "where", "how", "can", "could", "would", "the", "my",
	"i", "im", "it", "is", "do", "does", "please", "this", "that", "you",
	"your", "we", "our", "sure",
}

// DefaultPatterns returns the built-in pattern set. The returned value is
// shared and must be treated as read-only.
func DefaultPatterns() *PatternSet {
	return defaultPatterns
}

var defaultPatterns = &PatternSet{
	Version: PatternVersion,

	Phone:   regexp.MustCompile(`(\d{3})[ .-]?(\d{3})[ .-]?(\d{4})`),
	Email:   regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
	Address: regexp.MustCompile(`(?i)\b\d{1,5}\s[A-Za-z0-9\s,.#-]+?\b(Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Drive|Dr|Court|Ct|Trail|Way|Blvd|Boulevard|Place|Pl|Parkway|Pkwy)\b`),

	Mild:   regexp.MustCompile(`(?i)\b(stupid|dumb|idiot|fucked?|fucking|shit|bitch|damn|hell)\b`),
	Severe: regexp.MustCompile(`(?i)\b(kill|murder|suicide|terrorist|bomb|weapon|rape|molest)\b`),

	Escalation: regexp.MustCompile(`(?i)(speak.*human|talk.*person|talk.*someone|manager|supervisor|can't help|not helping|frustrated|angry|ridiculous|unacceptable|terrible service)`),
	Closing:    regexp.MustCompile(`(?i)^(thanks|thank you|bye|goodbye|ok|okay|perfect|sounds good|great|got it|that's all|all set|done)[.!]?$`),

	Bereavement: regexp.MustCompile(`(?i)(my (dad|mom|father|mother|grandma|grandpa|grandmother|grandfather|parent|spouse|wife|husband) (just )?(passed|died)|lost my (dad|mom|father|mother|grandma|grandpa|grandmother|grandfather|parent|spouse)|bereavement|estate cleanout|death in (the )?family)`),

	ContactAsk: regexp.MustCompile(`(?i)what.?s your (name|phone|number|email|contact)`),
	AddressAsk: regexp.MustCompile(`(?i)(delivery address|drop.?off address|address|email)`),

	LeadConfirmed: regexp.MustCompile(`(?i)(i'?ve got everything i need|we'?ll reach out shortly|thanks for choosing)`),

	NameExclusions: buildExclusions(defaultExclusions),
}

func buildExclusions(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
