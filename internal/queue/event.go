// Package queue defines message payloads exchanged over the message broker
// plus the publisher and the background consumer that turns lead events
// into admin notification emails.
package queue

// LeadReceivedEvent is published when a security-wall submission has been
// persisted. It carries enough information for the notification consumer
// to render and dispatch the admin email without querying the primary
// database. Resubmission marks updates of an existing lead (same document
// number seen before) so the email can say so.
type LeadReceivedEvent struct {
	LeadID        uint64 `json:"lead_id"`
	LeadName      string `json:"lead_name"`
	LeadDocument  string `json:"lead_document"`
	LeadPhone     string `json:"lead_phone"`
	LeadEmail     string `json:"lead_email,omitempty"`
	PropertyID    uint64 `json:"property_id"`
	PropertyTitle string `json:"property_title"`
	PropertySlug  string `json:"property_slug,omitempty"`
	Message       string `json:"message,omitempty"`
	Resubmission  bool   `json:"resubmission"`
	ReceivedAt    string `json:"received_at"`
}
