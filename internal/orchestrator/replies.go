package orchestrator

import "fmt"

// Replies holds the fixed reply texts the handler returns without calling
// the model. They are rendered once from a persona and catalog so custom
// deployments get consistent wording.
type Replies struct {
	SevereBlock   string
	RepeatedMild  string
	MildOnce      string
	NudgeFirst    string
	NudgeRepeat   string
	CloseCaptured string
	LeadConfirmed string
	SoftFailure   string
	SelfServe     string
	DidNotCatch   string
	GenericError  string
}

// EscalationConfirm renders the hand-off reply with the customer's phone
// number echoed back.
func (r Replies) EscalationConfirm(phone string) string {
	return fmt.Sprintf("I've flagged this for my manager to review. Someone from our team will call you at %s within the hour during business hours. Thank you for your patience.", phone)
}

// NewReplies renders the fixed reply set for a persona and catalog.
func NewReplies(p Persona, c Catalog) Replies {
	p = p.withDefaults()
	return Replies{
		SevereBlock: fmt.Sprintf("I'm going to end this conversation now. If you have a genuine %s need, please call us directly at %s.",
			p.ServiceNoun, p.Phone),
		RepeatedMild: fmt.Sprintf("I understand you're frustrated, but I need to keep our conversation respectful. If you'd like help with a rental, please call us at %s.", p.Phone),
		MildOnce:     fmt.Sprintf("I'm here to help with %s and cleanup services. Let's stay on topic!", p.ServiceNoun),
		NudgeFirst:   "I'd be happy to have someone from our team review this personally. Could I get your name and phone number so we can follow up with you directly?",
		NudgeRepeat:  "I completely understand wanting to speak with someone directly. So our team can reach you, could you share your name and the best phone number to call?",
		CloseCaptured: "Chat closed, lead captured.",
		LeadConfirmed: "Perfect! I've got everything I need. Someone from our team will reach out shortly to confirm the details. Thanks for choosing " + p.BusinessName + "!",
		SoftFailure: "Thanks! I've saved your info, though we're having a small technical hiccup on our end. No worries, someone from our team will still reach out to you shortly!",
		SelfServe: fmt.Sprintf("No problem — I completely understand! You can book directly here anytime: <%s> or call us at %s.",
			c.OverviewURL, p.Phone),
		DidNotCatch:  "Sorry, I didn't catch that. Could you rephrase?",
		GenericError: fmt.Sprintf("Sorry, something went wrong on our end. Please try again or call us at %s.", p.Phone),
	}
}
