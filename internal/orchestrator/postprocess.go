package orchestrator

import (
	"regexp"
	"strings"
)

// Stage is a single reply-rewriting step. Stages run in order and each
// receives the output of the previous one.
type Stage func(reply, userText string, c Catalog) string

// Pipeline applies an ordered list of stages to a model reply.
type Pipeline struct {
	catalog Catalog
	stages  []Stage
}

// NewPipeline returns the standard post-processing pipeline: wrap bare
// URLs in angle brackets, repair empty link placeholders, then make sure
// at least one booking link is present.
func NewPipeline(c Catalog) *Pipeline {
	return &Pipeline{
		catalog: c,
		stages:  []Stage{WrapBareURLs, RepairEmptyLinks, EnsureLink},
	}
}

// Run rewrites reply through every stage. userText is the customer's side
// of the conversation, used for tier matching.
func (p *Pipeline) Run(reply, userText string) string {
	for _, s := range p.stages {
		reply = s(reply, userText, p.catalog)
	}
	return reply
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>")\]]+`)

// WrapBareURLs wraps every URL in angle brackets unless it is already
// wrapped. Trailing sentence punctuation stays outside the brackets.
func WrapBareURLs(reply, _ string, _ Catalog) string {
	locs := urlPattern.FindAllStringIndex(reply, -1)
	if len(locs) == 0 {
		return reply
	}

	var b strings.Builder
	b.Grow(len(reply) + 2*len(locs))
	prev := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		url := reply[start:end]

		// Strip trailing punctuation the model glued onto the URL.
		trimmed := strings.TrimRight(url, ".,!?;:")
		end -= len(url) - len(trimmed)
		url = trimmed

		b.WriteString(reply[prev:start])
		if start > 0 && reply[start-1] == '<' {
			b.WriteString(url)
		} else {
			b.WriteByte('<')
			b.WriteString(url)
			b.WriteByte('>')
		}
		prev = end
	}
	b.WriteString(reply[prev:])
	return b.String()
}

// RepairEmptyLinks replaces empty "<>" placeholders, which some models
// emit when instructed to wrap links, with the catalog overview link.
func RepairEmptyLinks(reply, _ string, c Catalog) string {
	if !strings.Contains(reply, "<>") {
		return reply
	}
	return strings.ReplaceAll(reply, "<>", "<"+c.OverviewURL+">")
}

// EnsureLink appends a booking link whenever the reply contains no link at
// all. The link is chosen by matching the conversation against the catalog,
// falling back to the overview page.
func EnsureLink(reply, userText string, c Catalog) string {
	if strings.Contains(reply, "<http") {
		return reply
	}
	url := c.OverviewURL
	if tier, ok := c.Match(userText + " " + reply); ok {
		url = tier.URL
	}
	return strings.TrimRight(reply, " \n") + " You can book here: <" + url + ">"
}
