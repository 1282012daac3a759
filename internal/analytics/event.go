// Package analytics describes alias lifecycle events and where they end up.
package analytics

import (
	"time"

	"github.com/mileusna/useragent"
)

const (
	TopicAliasCreated = "alias.created"
	TopicAliasVisited = "alias.visited"
)

// AliasCreatedEvent is emitted after an alias is created or re-issued.
type AliasCreatedEvent struct {
	EventID   string    `json:"eventId"`
	AliasID   string    `json:"aliasId"`
	Alias     string    `json:"alias"`
	OwnerID   string    `json:"ownerId"`
	TargetURL string    `json:"targetUrl"`
	Custom    bool      `json:"custom"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// AliasVisitedEvent is emitted for every successful resolution.
type AliasVisitedEvent struct {
	EventID   string    `json:"eventId"`
	Alias     string    `json:"alias"`
	TargetURL string    `json:"targetUrl"`
	VisitedAt time.Time `json:"visitedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Bot       bool      `json:"bot"`
}

// NewVisitedEvent builds a visit event, classifying the user agent.
func NewVisitedEvent(eventID, alias, targetURL string, meta RequestMeta, at time.Time) *AliasVisitedEvent {
	ua := useragent.Parse(meta.UserAgent)

	return &AliasVisitedEvent{
		EventID:   eventID,
		Alias:     alias,
		TargetURL: targetURL,
		VisitedAt: at,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
		Browser:   ua.Name,
		OS:        ua.OS,
		Device:    deviceClass(ua),
		Bot:       ua.Bot,
	}
}

func deviceClass(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
